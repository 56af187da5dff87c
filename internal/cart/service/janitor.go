package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/leonjames-san/familiams/internal/cart/repository"
)

const (
	// DefaultIdleTTL is how long a cart may go untouched before cleanup.
	DefaultIdleTTL = 72 * time.Hour

	// DefaultSweepInterval is how often the janitor runs.
	DefaultSweepInterval = 30 * time.Minute
)

// Janitor drops carts that have been idle past their TTL. Cache entries for
// dropped carts expire on their own redis TTL.
type Janitor struct {
	repo     repository.CartRepository
	interval time.Duration
	idleTTL  time.Duration
}

func NewJanitor(repo repository.CartRepository, interval, idleTTL time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Janitor{repo: repo, interval: interval, idleTTL: idleTTL}
}

// Run blocks, sweeping on a ticker until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	dropped, err := j.repo.DeleteIdleCarts(ctx, j.idleTTL)
	if err != nil {
		slog.ErrorContext(ctx, "idle cart sweep failed", "error", err)
		return
	}
	if dropped > 0 {
		slog.InfoContext(ctx, "dropped idle carts", "count", dropped)
	}
}
