package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/leonjames-san/familiams/internal/cart/domain"
	orderdomain "github.com/leonjames-san/familiams/internal/order/domain"
)

type mockCartStore struct {
	m       sync.Mutex
	cart    *cartdomain.Cart
	getErr  error
	cleared bool
}

func (m *mockCartStore) GetCart(context.Context, string) (*cartdomain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cart, nil
}

func (m *mockCartStore) Clear(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cleared = true
	m.cart = cartdomain.New(m.cart.SessionID)
	return nil
}

func (m *mockCartStore) wasCleared() bool {
	m.m.Lock()
	defer m.m.Unlock()
	return m.cleared
}

type mockOrderCreator struct {
	m       sync.Mutex
	err     error
	created *orderdomain.Order
}

func (m *mockOrderCreator) CreateOrder(_ context.Context, order *orderdomain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.created = order
	return nil
}

func TestSubmit_Success_PersistsAndClearsCart(t *testing.T) {
	carts := &mockCartStore{cart: cartWith(t, productLine("p1", "50.00", 2))}
	orders := &mockOrderCreator{}
	sut := NewService(carts, orders)

	order, err := sut.Submit(context.Background(), "sess-1", validCustomer(), MethodCard)
	require.NoError(t, err)

	require.NotNil(t, orders.created)
	assert.Equal(t, order.ID, orders.created.ID)
	assert.Equal(t, "100.00", order.TotalAmount.String())
	assert.True(t, carts.wasCleared())
}

func TestSubmit_PersistenceFailure_LeavesCartUntouched(t *testing.T) {
	carts := &mockCartStore{cart: cartWith(t, productLine("p1", "50.00", 2))}
	boom := errors.New("postgres down")
	orders := &mockOrderCreator{err: boom}
	sut := NewService(carts, orders)

	_, err := sut.Submit(context.Background(), "sess-1", validCustomer(), MethodCard)

	// The upstream error passes through unchanged and nothing is cleared.
	assert.ErrorIs(t, err, boom)
	assert.False(t, carts.wasCleared())
	assert.Equal(t, 2, carts.cart.ItemCount())
}

func TestSubmit_EmptyCart_NoPersistenceCall(t *testing.T) {
	carts := &mockCartStore{cart: cartdomain.New("sess-1")}
	orders := &mockOrderCreator{}
	sut := NewService(carts, orders)

	_, err := sut.Submit(context.Background(), "sess-1", validCustomer(), MethodPix)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, orders.created)
	assert.False(t, carts.wasCleared())
}

func TestSubmit_InvalidCustomer_NoPersistenceCall(t *testing.T) {
	carts := &mockCartStore{cart: cartWith(t, productLine("p1", "10.00", 1))}
	orders := &mockOrderCreator{}
	sut := NewService(carts, orders)

	_, err := sut.Submit(context.Background(), "sess-1", Customer{Name: "Ana"}, MethodPix)

	var missing *MissingFieldError
	assert.ErrorAs(t, err, &missing)
	assert.Nil(t, orders.created)
}

func TestSubmit_RepeatedFailures_OpenBreaker(t *testing.T) {
	carts := &mockCartStore{cart: cartWith(t, productLine("p1", "10.00", 1))}
	orders := &mockOrderCreator{err: errors.New("postgres down")}
	sut := NewService(carts, orders)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := sut.Submit(ctx, "sess-1", validCustomer(), MethodCard)
		require.Error(t, err)
	}

	// Breaker is open now; the repository stops being hit.
	orders.err = nil
	_, err := sut.Submit(ctx, "sess-1", validCustomer(), MethodCard)
	assert.Error(t, err)
	assert.Nil(t, orders.created)
}
