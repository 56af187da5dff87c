package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonjames-san/familiams/internal/cart/cache"
	"github.com/leonjames-san/familiams/internal/cart/domain"
	"github.com/leonjames-san/familiams/internal/cart/repository"
	"github.com/leonjames-san/familiams/internal/money"
)

type mockRepository struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	err     error
	upserts int
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepository) GetCart(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *cart
	return &cp, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.upserts++
	cp := *cart
	m.carts[cart.SessionID] = &cp
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[sessionID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, sessionID)
	return nil
}

func (m *mockRepository) DeleteIdleCarts(_ context.Context, idleFor time.Duration) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	cutoff := time.Now().Add(-idleFor)
	var n int64
	for id, cart := range m.carts {
		if cart.UpdatedAt.Before(cutoff) {
			delete(m.carts, id)
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) stored(sessionID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[sessionID]
}

type mockCache struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *mockCache) Set(_ context.Context, sessionID string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.carts[sessionID] = cart
	return nil
}

func (m *mockCache) Delete(_ context.Context, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, sessionID)
	return m.err
}

func (m *mockCache) getCart(sessionID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[sessionID]
}

func testLine(id string, price string, qty int) domain.CartLine {
	return domain.CartLine{
		ID:          id,
		Kind:        domain.KindProduct,
		DisplayName: "item " + id,
		UnitPrice:   money.MustParse(price),
		Quantity:    qty,
	}
}

func TestGetCart_UnknownSession_ReturnsEmptyCart(t *testing.T) {
	sut := NewCartService(newMockRepository(), newMockCache())

	cart, err := sut.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", cart.SessionID)
	assert.True(t, cart.IsEmpty())
}

func TestGetCart_ServesFromCache(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.err = errors.New("repo must not be hit")
	mockC := newMockCache()

	cached := domain.New("sess-1")
	require.NoError(t, cached.AddItem(testLine("p1", "10.00", 2)))
	mockC.carts["sess-1"] = cached

	sut := NewCartService(mockRepo, mockC)
	cart, err := sut.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ItemCount())
}

func TestGetCart_CacheMiss_PopulatesCache(t *testing.T) {
	mockRepo := newMockRepository()
	stored := domain.New("sess-1")
	require.NoError(t, stored.AddItem(testLine("p1", "10.00", 1)))
	mockRepo.carts["sess-1"] = stored
	mockC := newMockCache()

	sut := NewCartService(mockRepo, mockC)
	cart, err := sut.GetCart(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount())

	// The cache write happens on a background goroutine.
	assert.Eventually(t, func() bool {
		return mockC.getCart("sess-1") != nil
	}, time.Second, 10*time.Millisecond)
}

func TestGetCart_RepoError_Propagates(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.err = errors.New("mongo down")

	sut := NewCartService(mockRepo, newMockCache())
	_, err := sut.GetCart(context.Background(), "sess-1")
	assert.Error(t, err)
}

func TestAddItem_MergesOnRepeatedAdds(t *testing.T) {
	mockRepo := newMockRepository()
	sut := NewCartService(mockRepo, newMockCache())
	ctx := context.Background()

	_, err := sut.AddItem(ctx, "sess-1", testLine("p1", "50.00", 2))
	require.NoError(t, err)
	cart, err := sut.AddItem(ctx, "sess-1", testLine("p1", "50.00", 3))
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.Equal(t, "250.00", cart.Total().String())

	stored := mockRepo.stored("sess-1")
	require.NotNil(t, stored)
	assert.Equal(t, 5, stored.ItemCount())
}

func TestAddItem_InvalidQuantity_NothingPersisted(t *testing.T) {
	mockRepo := newMockRepository()
	sut := NewCartService(mockRepo, newMockCache())

	_, err := sut.AddItem(context.Background(), "sess-1", testLine("p1", "50.00", 0))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, 0, mockRepo.upserts)
}

func TestAddItem_InvalidatesCache(t *testing.T) {
	mockRepo := newMockRepository()
	mockC := newMockCache()
	stale := domain.New("sess-1")
	mockC.carts["sess-1"] = stale

	sut := NewCartService(mockRepo, mockC)
	_, err := sut.AddItem(context.Background(), "sess-1", testLine("p1", "50.00", 1))
	require.NoError(t, err)

	assert.Nil(t, mockC.getCart("sess-1"))
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	mockRepo := newMockRepository()
	sut := NewCartService(mockRepo, newMockCache())
	ctx := context.Background()

	_, err := sut.AddItem(ctx, "sess-1", testLine("p1", "10.00", 2))
	require.NoError(t, err)

	cart, err := sut.UpdateQuantity(ctx, "sess-1", "p1", 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestRemoveItem_AbsentID_NoError(t *testing.T) {
	sut := NewCartService(newMockRepository(), newMockCache())

	cart, err := sut.RemoveItem(context.Background(), "sess-1", "ghost")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestClear_DropsCartAndCache(t *testing.T) {
	mockRepo := newMockRepository()
	mockC := newMockCache()
	sut := NewCartService(mockRepo, mockC)
	ctx := context.Background()

	_, err := sut.AddItem(ctx, "sess-1", testLine("p1", "10.00", 2))
	require.NoError(t, err)

	require.NoError(t, sut.Clear(ctx, "sess-1"))
	assert.Nil(t, mockRepo.stored("sess-1"))
	assert.Nil(t, mockC.getCart("sess-1"))
}

func TestClear_UnknownSession_NoError(t *testing.T) {
	sut := NewCartService(newMockRepository(), newMockCache())
	assert.NoError(t, sut.Clear(context.Background(), "never-seen"))
}

func TestJanitor_SweepDropsIdleCarts(t *testing.T) {
	mockRepo := newMockRepository()
	old := domain.New("old-sess")
	old.UpdatedAt = time.Now().Add(-2 * time.Hour)
	mockRepo.carts["old-sess"] = old
	fresh := domain.New("fresh-sess")
	mockRepo.carts["fresh-sess"] = fresh

	j := NewJanitor(mockRepo, time.Minute, time.Hour)
	j.sweep(context.Background())

	assert.Nil(t, mockRepo.stored("old-sess"))
	assert.NotNil(t, mockRepo.stored("fresh-sess"))
}
