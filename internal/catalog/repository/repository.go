package repository

import (
	"context"
	"errors"

	"github.com/leonjames-san/familiams/internal/catalog/domain"
)

var ErrNotFound = errors.New("catalog entry not found")

// CatalogRepository serves storefront listings and admin CRUD. Admin
// mutations return the set of collections they made stale so callers can
// refetch only what changed.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListServices(ctx context.Context, filter domain.ListFilter) ([]*domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	ListSellers(ctx context.Context) ([]*domain.Seller, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	UpsertProduct(ctx context.Context, p *domain.Product) (domain.StaleSet, error)
	DeleteProduct(ctx context.Context, id string) (domain.StaleSet, error)
	UpsertService(ctx context.Context, s *domain.Service) (domain.StaleSet, error)
	DeleteService(ctx context.Context, id string) (domain.StaleSet, error)
	AddReview(ctx context.Context, r *domain.Review) (domain.StaleSet, error)

	Stats(ctx context.Context) (*domain.Stats, error)
	RunMigrations(migrationsPath string) error
	Close() error
}
