package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/leonjames-san/familiams/internal/money"
	"github.com/leonjames-san/familiams/internal/order/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateOrder inserts the order, its items, and an outbox event in one
// transaction. Either everything lands or nothing does.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	const insertOrder = `
		INSERT INTO orders
			(id, customer_name, customer_email, customer_phone, payment_method, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := tx.ExecContext(ctx, insertOrder,
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.PaymentMethod,
		order.TotalAmount.String(),
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const insertItem = `
		INSERT INTO order_items
			(order_id, product_id, service_id, display_name, quantity, unit_price, total_price, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, item := range order.Items {
		if _, err := tx.ExecContext(ctx, insertItem,
			order.ID,
			item.ProductID,
			item.ServiceID,
			item.DisplayName,
			item.Quantity,
			item.UnitPrice.String(),
			item.TotalPrice.String(),
			i,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	const insertEvent = `
		INSERT INTO order_outbox (order_id, payload, created_at)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, insertEvent, order.ID, payload, now); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx commit: %w", err)
	}
	committed = true
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	const query = `
		SELECT id, customer_name, customer_email, customer_phone, payment_method, total_amount, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	var order domain.Order
	var total string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.PaymentMethod,
		&total,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}

	order.TotalAmount, err = money.Parse(total)
	if err != nil {
		return nil, fmt.Errorf("stored order %s has bad total: %w", id, err)
	}

	items, err := r.orderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *Repository) orderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	const query = `
		SELECT product_id, service_id, display_name, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var unitPrice, totalPrice string
		if err := rows.Scan(
			&item.ProductID,
			&item.ServiceID,
			&item.DisplayName,
			&item.Quantity,
			&unitPrice,
			&totalPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if item.UnitPrice, err = money.Parse(unitPrice); err != nil {
			return nil, fmt.Errorf("stored item has bad unit price: %w", err)
		}
		if item.TotalPrice, err = money.Parse(totalPrice); err != nil {
			return nil, fmt.Errorf("stored item has bad total price: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *Repository) CountOrders(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *Repository) CountOrdersSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	const query = `SELECT COUNT(*) FROM orders WHERE created_at >= $1`
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders since: %w", err)
	}
	return n, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	const query = `
		SELECT id, order_id, payload, created_at
		FROM order_outbox
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	const query = `UPDATE order_outbox SET processed_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now()); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
