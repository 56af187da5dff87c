package cache

import (
	"context"
	"errors"

	"github.com/leonjames-san/familiams/internal/cart/domain"
)

// CartCache is the read-through cache in front of the cart repository.
type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
