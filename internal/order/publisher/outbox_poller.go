package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	r "github.com/leonjames-san/familiams/internal/order/repository"
)

// EventSource is the slice of the order repository the poller reads from.
type EventSource interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*r.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller drains the order outbox onto the order-confirmations topic.
// Events stay in the outbox until a publish succeeds, so downstream
// consumers see every order at least once.
type OutboxPoller struct {
	tick      time.Duration
	batchSize int
	source    EventSource
	writer    MessageWriter
}

func NewOutboxPoller(source EventSource, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-confirmations",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		tick:      time.Second,
		batchSize: 100,
		source:    source,
		writer:    w,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() {
	if err := p.writer.Close(); err != nil {
		slog.Error("error closing kafka writer", "error", err)
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.source.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch outbox events", "error", err)
		return
	}

	for _, event := range events {
		msg := kafka.Message{
			Key:   []byte(event.OrderID.String()),
			Value: event.Payload,
		}
		if errPublish := p.writer.WriteMessages(ctx, msg); errPublish != nil {
			slog.ErrorContext(ctx, "failed to publish outbox event", "event_id", event.ID, "error", errPublish)
			continue
		}

		if errMark := p.source.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			slog.ErrorContext(ctx, "failed to mark outbox event processed", "event_id", event.ID, "error", errMark)
			continue
		}
	}
}
