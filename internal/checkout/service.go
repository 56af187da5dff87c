package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	cartdomain "github.com/leonjames-san/familiams/internal/cart/domain"
	orderdomain "github.com/leonjames-san/familiams/internal/order/domain"
)

// CartStore is the slice of the cart service the checkout needs.
type CartStore interface {
	GetCart(ctx context.Context, sessionID string) (*cartdomain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// OrderCreator persists assembled orders. Implemented by the order
// repository.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order *orderdomain.Order) error
}

// Service runs the checkout: assemble an order from the session's cart,
// persist it, and clear the cart only once persistence has succeeded. A
// failed submit leaves the cart untouched so the customer can retry.
type Service struct {
	carts  CartStore
	orders OrderCreator
	cb     *gobreaker.CircuitBreaker[struct{}]
}

func NewService(carts CartStore, orders OrderCreator) *Service {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "order-persistence",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Service{
		carts:  carts,
		orders: orders,
		cb:     cb,
	}
}

// Submit places an order for the session's current cart.
func (s *Service) Submit(ctx context.Context, sessionID string, customer Customer, method PaymentMethod) (*orderdomain.Order, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	order, err := BuildOrder(cart, customer, method)
	if err != nil {
		return nil, err
	}

	if _, err := s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.orders.CreateOrder(ctx, order)
	}); err != nil {
		// Cart stays as it was; the customer may retry.
		return nil, err
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"session_id", sessionID,
		"total_amount", order.TotalAmount.String(),
		"payment_method", method,
	)

	// The order is durable; a failed cart clear must not fail the checkout.
	if errClear := s.carts.Clear(ctx, sessionID); errClear != nil {
		slog.ErrorContext(ctx, "cart clear after checkout failed", "session_id", sessionID, "error", errClear)
	}

	return order, nil
}
