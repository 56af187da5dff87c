package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	r "github.com/leonjames-san/familiams/internal/order/repository"
)

type MockSource struct {
	Events       []*r.OutboxEvent
	GetErr       error
	ProcessedIDs []int64
	MarkErr      error
}

func (m *MockSource) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	events := m.Events
	m.Events = nil
	return events, nil
}

func (m *MockSource) MarkEventAsProcessed(_ context.Context, id int64) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.ProcessedIDs = append(m.ProcessedIDs, id)
	return nil
}

type MockWriter struct {
	Written  []kafkaGo.Message
	WriteErr error
}

func (m *MockWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Written = append(m.Written, msgs...)
	return nil
}

func (m *MockWriter) Close() error { return nil }

func testPoller(source EventSource, writer MessageWriter) *OutboxPoller {
	return &OutboxPoller{
		tick:      time.Millisecond,
		batchSize: 100,
		source:    source,
		writer:    writer,
	}
}

func outboxEvent(id int64) *r.OutboxEvent {
	return &r.OutboxEvent{
		ID:        id,
		OrderID:   uuid.New(),
		Payload:   []byte(`{"status":"pending"}`),
		CreatedAt: time.Now(),
	}
}

func TestProcessUnpublishedEvents_PublishesAndMarks(t *testing.T) {
	ev1 := outboxEvent(1)
	ev2 := outboxEvent(2)
	source := &MockSource{Events: []*r.OutboxEvent{ev1, ev2}}
	writer := &MockWriter{}

	testPoller(source, writer).processUnpublishedEvents(context.Background())

	require.Len(t, writer.Written, 2)
	assert.Equal(t, []byte(ev1.OrderID.String()), writer.Written[0].Key)
	assert.Equal(t, ev1.Payload, []byte(writer.Written[0].Value))
	assert.Equal(t, []int64{1, 2}, source.ProcessedIDs)
}

func TestProcessUnpublishedEvents_WriteFailure_NotMarked(t *testing.T) {
	source := &MockSource{Events: []*r.OutboxEvent{outboxEvent(1)}}
	writer := &MockWriter{WriteErr: errors.New("broker unreachable")}

	testPoller(source, writer).processUnpublishedEvents(context.Background())

	assert.Empty(t, source.ProcessedIDs, "unpublished events must stay in the outbox")
}

func TestProcessUnpublishedEvents_SourceFailure_NoWrites(t *testing.T) {
	source := &MockSource{GetErr: errors.New("db down")}
	writer := &MockWriter{}

	testPoller(source, writer).processUnpublishedEvents(context.Background())

	assert.Empty(t, writer.Written)
}

func TestProcessUnpublishedEvents_MarkFailure_ContinuesWithNext(t *testing.T) {
	source := &MockSource{
		Events:  []*r.OutboxEvent{outboxEvent(1), outboxEvent(2)},
		MarkErr: errors.New("update failed"),
	}
	writer := &MockWriter{}

	testPoller(source, writer).processUnpublishedEvents(context.Background())

	// Both events were still handed to kafka; marking is retried next tick.
	assert.Len(t, writer.Written, 2)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	source := &MockSource{}
	writer := &MockWriter{}
	p := testPoller(source, writer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
