package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/leonjames-san/familiams/internal/cart/cache"
	"github.com/leonjames-san/familiams/internal/cart/domain"
	"github.com/leonjames-san/familiams/internal/cart/repository"
)

// CartService owns all reads and writes of session carts. Every mutation is
// applied through the domain aggregate and then persisted as a whole, so the
// stored cart always satisfies the aggregate's invariants.
type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
	}
}

// GetCart returns the session's cart, serving from cache when possible.
// A session with no stored cart gets an empty aggregate.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "cart cache get failed", "error", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, sessionID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return domain.New(sessionID), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			bg, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(bg, sessionID, cart); errSet != nil {
				slog.Warn("cart cache set failed", "error", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem merges the candidate line into the session's cart.
func (s *CartService) AddItem(ctx context.Context, sessionID string, line domain.CartLine) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		return c.AddItem(line)
	})
}

// UpdateQuantity sets the quantity of one line; zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.UpdateQuantity(itemID, quantity)
		return nil
	})
}

// RemoveItem deletes one line. Absent lines are a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.RemoveItem(itemID)
		return nil
	})
}

// Clear drops the session's cart entirely.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	err := s.repo.DeleteCart(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		slog.ErrorContext(ctx, "cart delete failed", "session_id", sessionID, "error", err)
		return err
	}

	s.invalidate(sessionID)
	return nil
}

// mutate loads the aggregate, applies a single domain mutation, and persists
// the result. The cache entry is invalidated, not rewritten; the next read
// repopulates it.
func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = domain.New(sessionID)
	} else if err != nil {
		return nil, err
	}

	if errFn := fn(cart); errFn != nil {
		return nil, errFn
	}

	if errUpsert := s.repo.UpsertCart(ctx, cart); errUpsert != nil {
		slog.ErrorContext(ctx, "cart upsert failed", "session_id", sessionID, "error", errUpsert)
		return nil, errUpsert
	}

	s.invalidate(sessionID)
	return cart, nil
}

func (s *CartService) invalidate(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		slog.Warn("cart cache invalidate failed", "session_id", sessionID, "error", err)
	}
}
