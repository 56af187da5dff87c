package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	cartdomain "github.com/leonjames-san/familiams/internal/cart/domain"
	catalogdomain "github.com/leonjames-san/familiams/internal/catalog/domain"
	"github.com/leonjames-san/familiams/internal/catalog/repository"
	"github.com/leonjames-san/familiams/internal/money"
)

// CartAPI is the slice of the cart service this handler uses.
type CartAPI interface {
	GetCart(ctx context.Context, sessionID string) (*cartdomain.Cart, error)
	AddItem(ctx context.Context, sessionID string, line cartdomain.CartLine) (*cartdomain.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*cartdomain.Cart, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (*cartdomain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// ItemResolver looks up the catalog entry a cart line references.
type ItemResolver interface {
	GetProduct(ctx context.Context, id string) (*catalogdomain.Product, error)
	GetService(ctx context.Context, id string) (*catalogdomain.Service, error)
}

type CartHandler struct {
	carts   CartAPI
	catalog ItemResolver
	timeout time.Duration
}

func NewCartHandler(carts CartAPI, catalog ItemResolver, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ItemID   string `json:"item_id"`
	Kind     string `json:"kind"`
	Quantity int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartResponseDTO always carries the derived total and item count so clients
// never compute them from the lines.
type CartResponseDTO struct {
	SessionID string                `json:"session_id"`
	Lines     []cartdomain.CartLine `json:"lines"`
	Total     money.Money           `json:"total"`
	ItemCount int                   `json:"item_count"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func toCartResponse(c *cartdomain.Cart) CartResponseDTO {
	lines := c.Lines
	if lines == nil {
		lines = []cartdomain.CartLine{}
	}
	return CartResponseDTO{
		SessionID: c.SessionID,
		Lines:     lines,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, sessionFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

// AddItem resolves the item from the catalog so price and name are never
// taken from the client.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	line, err := h.resolveLine(ctx, req)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item", err.Error())
		return
	}

	cart, err := h.carts.AddItem(ctx, sessionFromContext(r.Context()), line)
	if errors.Is(err, cartdomain.ErrInvalidQuantity) {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusCreated, toCartResponse(cart))
}

var errItemUnavailable = errors.New("item is not available")

func (h *CartHandler) resolveLine(ctx context.Context, req AddItemRequestDTO) (cartdomain.CartLine, error) {
	switch cartdomain.ItemKind(req.Kind) {
	case cartdomain.KindService:
		s, err := h.catalog.GetService(ctx, req.ItemID)
		if err != nil {
			return cartdomain.CartLine{}, err
		}
		if !s.IsActive {
			return cartdomain.CartLine{}, errItemUnavailable
		}
		return cartdomain.CartLine{
			ID:          s.ID,
			Kind:        cartdomain.KindService,
			DisplayName: s.Name,
			SellerName:  s.SellerName,
			UnitPrice:   s.PriceFrom,
			Quantity:    req.Quantity,
		}, nil
	case cartdomain.KindProduct, "":
		p, err := h.catalog.GetProduct(ctx, req.ItemID)
		if err != nil {
			return cartdomain.CartLine{}, err
		}
		if !p.IsActive {
			return cartdomain.CartLine{}, errItemUnavailable
		}
		return cartdomain.CartLine{
			ID:          p.ID,
			Kind:        cartdomain.KindProduct,
			DisplayName: p.Name,
			ImageRef:    p.ImageURL,
			SellerName:  p.SellerName,
			UnitPrice:   p.Price,
			Quantity:    req.Quantity,
		}, nil
	}
	return cartdomain.CartLine{}, errors.New("kind must be \"product\" or \"service\"")
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "item_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// Zero and below remove the line; the aggregate handles that.
	cart, err := h.carts.UpdateQuantity(ctx, sessionFromContext(r.Context()), itemID, req.Quantity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.RemoveItem(ctx, sessionFromContext(r.Context()), chi.URLParam(r, "item_id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}

	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.Clear(ctx, sessionFromContext(r.Context())); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
