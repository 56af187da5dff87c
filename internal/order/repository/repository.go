package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/leonjames-san/familiams/internal/order/domain"
)

var ErrOrderNotFound = errors.New("order not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is one pending order-confirmed notification.
type OutboxEvent struct {
	ID        int64
	OrderID   uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	CountOrders(ctx context.Context) (int, error)
	CountOrdersSince(ctx context.Context, since time.Time) (int, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	RunMigrations(*Credentials) error
	Close() error
}
