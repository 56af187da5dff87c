package repository

import (
	"context"
	"errors"
	"time"

	"github.com/leonjames-san/familiams/internal/cart/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository persists session carts. Mutations go through the domain
// aggregate first; the repository only stores and retrieves whole carts, so
// there is no second write path that could bypass the cart invariants.
type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, sessionID string) error
	DeleteIdleCarts(ctx context.Context, idleFor time.Duration) (int64, error)
}
