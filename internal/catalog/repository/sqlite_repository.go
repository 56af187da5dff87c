package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leonjames-san/familiams/internal/catalog/domain"
	"github.com/leonjames-san/familiams/internal/money"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps in-memory databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.category_id, p.seller_id,
	p.image_url, p.is_featured, p.is_active, p.stock_quantity,
	p.created_at, p.updated_at,
	c.name, s.name,
	COALESCE(AVG(r.rating), 0), COUNT(r.id)
`

func (r *Repository) ListProducts(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		JOIN sellers s ON s.id = p.seller_id
		LEFT JOIN reviews r ON r.product_id = p.id
		WHERE (? = '' OR c.name = ?)
		  AND (? = 0 OR p.is_active = 1)
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC
	`
	activeOnly := 0
	if filter.ActiveOnly {
		activeOnly = 1
	}

	rows, err := r.db.QueryContext(ctx, query, filter.Category, filter.Category, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		JOIN sellers s ON s.id = p.seller_id
		LEFT JOIN reviews r ON r.product_id = p.id
		WHERE p.id = ?
		GROUP BY p.id
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("row iteration error: %w", err)
		}
		return nil, ErrNotFound
	}

	return scanProduct(rows)
}

func scanProduct(rows *sql.Rows) (*domain.Product, error) {
	p := &domain.Product{}
	var price string
	if err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&price,
		&p.CategoryID,
		&p.SellerID,
		&p.ImageURL,
		&p.IsFeatured,
		&p.IsActive,
		&p.StockQuantity,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CategoryName,
		&p.SellerName,
		&p.AvgRating,
		&p.ReviewCount,
	); err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	var err error
	if p.Price, err = money.Parse(price); err != nil {
		return nil, fmt.Errorf("stored product %s has bad price: %w", p.ID, err)
	}
	return p, nil
}

const serviceColumns = `
	v.id, v.name, v.description, v.price_from, v.price_type,
	v.category_id, v.seller_id, v.is_featured, v.is_active,
	v.created_at, v.updated_at,
	c.name, s.name,
	COALESCE(AVG(r.rating), 0), COUNT(r.id)
`

func (r *Repository) ListServices(ctx context.Context, filter domain.ListFilter) ([]*domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services v
		JOIN categories c ON c.id = v.category_id
		JOIN sellers s ON s.id = v.seller_id
		LEFT JOIN reviews r ON r.service_id = v.id
		WHERE (? = '' OR c.name = ?)
		  AND (? = 0 OR v.is_active = 1)
		GROUP BY v.id
		ORDER BY v.created_at DESC, v.id DESC
	`
	activeOnly := 0
	if filter.ActiveOnly {
		activeOnly = 1
	}

	rows, err := r.db.QueryContext(ctx, query, filter.Category, filter.Category, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []*domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return services, nil
}

func (r *Repository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services v
		JOIN categories c ON c.id = v.category_id
		JOIN sellers s ON s.id = v.seller_id
		LEFT JOIN reviews r ON r.service_id = v.id
		WHERE v.id = ?
		GROUP BY v.id
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query service: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("row iteration error: %w", err)
		}
		return nil, ErrNotFound
	}

	return scanService(rows)
}

func scanService(rows *sql.Rows) (*domain.Service, error) {
	s := &domain.Service{}
	var price string
	var priceType string
	if err := rows.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&price,
		&priceType,
		&s.CategoryID,
		&s.SellerID,
		&s.IsFeatured,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.CategoryName,
		&s.SellerName,
		&s.AvgRating,
		&s.ReviewCount,
	); err != nil {
		return nil, fmt.Errorf("failed to scan service: %w", err)
	}

	s.PriceType = domain.PriceType(priceType)
	var err error
	if s.PriceFrom, err = money.Parse(price); err != nil {
		return nil, fmt.Errorf("stored service %s has bad price: %w", s.ID, err)
	}
	return s, nil
}

func (r *Repository) ListSellers(ctx context.Context) ([]*domain.Seller, error) {
	query := `
		SELECT id, name, email, role, avatar_url, specialties,
		       is_family_member, is_active, created_at, updated_at
		FROM sellers
		WHERE is_active = 1
		ORDER BY is_family_member DESC, name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sellers: %w", err)
	}
	defer rows.Close()

	var sellers []*domain.Seller
	for rows.Next() {
		s := &domain.Seller{}
		var specialties string
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Email,
			&s.Role,
			&s.AvatarURL,
			&specialties,
			&s.IsFamilyMember,
			&s.IsActive,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		if specialties != "" {
			if err := json.Unmarshal([]byte(specialties), &s.Specialties); err != nil {
				return nil, fmt.Errorf("stored seller %s has bad specialties: %w", s.ID, err)
			}
		}
		sellers = append(sellers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sellers, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, description, icon, created_at
		FROM categories
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

func (r *Repository) UpsertProduct(ctx context.Context, p *domain.Product) (domain.StaleSet, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}

	query := `
		INSERT INTO products
			(id, name, description, price, category_id, seller_id, image_url,
			 is_featured, is_active, stock_quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			category_id = excluded.category_id,
			seller_id = excluded.seller_id,
			image_url = excluded.image_url,
			is_featured = excluded.is_featured,
			is_active = excluded.is_active,
			stock_quantity = excluded.stock_quantity,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Price.String(), p.CategoryID, p.SellerID,
		p.ImageURL, p.IsFeatured, p.IsActive, p.StockQuantity, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", err)
	}

	return domain.StaleSet{domain.CollectionProducts}, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) (domain.StaleSet, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.StaleSet{}, nil
	}
	return domain.StaleSet{domain.CollectionProducts}, nil
}

func (r *Repository) UpsertService(ctx context.Context, s *domain.Service) (domain.StaleSet, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	if s.PriceType == "" {
		s.PriceType = domain.PriceFixed
	}

	query := `
		INSERT INTO services
			(id, name, description, price_from, price_type, category_id, seller_id,
			 is_featured, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price_from = excluded.price_from,
			price_type = excluded.price_type,
			category_id = excluded.category_id,
			seller_id = excluded.seller_id,
			is_featured = excluded.is_featured,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, s.PriceFrom.String(), string(s.PriceType),
		s.CategoryID, s.SellerID, s.IsFeatured, s.IsActive, s.CreatedAt, s.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert service: %w", err)
	}

	return domain.StaleSet{domain.CollectionServices}, nil
}

func (r *Repository) DeleteService(ctx context.Context, id string) (domain.StaleSet, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete service: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.StaleSet{}, nil
	}
	return domain.StaleSet{domain.CollectionServices}, nil
}

func (r *Repository) AddReview(ctx context.Context, rev *domain.Review) (domain.StaleSet, error) {
	if rev.ID == "" {
		rev.ID = uuid.New().String()
	}
	rev.CreatedAt = time.Now()

	query := `
		INSERT INTO reviews
			(id, product_id, service_id, customer_name, customer_email, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		rev.ID, rev.ProductID, rev.ServiceID, rev.CustomerName, rev.CustomerEmail,
		rev.Rating, rev.Comment, rev.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}

	// Ratings show up in product/service listings, so those go stale too.
	if rev.ProductID != nil {
		return domain.StaleSet{domain.CollectionProducts}, nil
	}
	return domain.StaleSet{domain.CollectionServices}, nil
}

func (r *Repository) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM products`, &stats.TotalProducts},
		{`SELECT COUNT(*) FROM services`, &stats.TotalServices},
		{`SELECT COUNT(*) FROM sellers WHERE is_active = 1`, &stats.TotalSellers},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	return stats, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
