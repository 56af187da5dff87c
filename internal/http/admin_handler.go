package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leonjames-san/familiams/internal/catalog/domain"
	"github.com/leonjames-san/familiams/internal/money"
)

// CatalogAdmin is the mutating slice of the catalog used by the admin panel.
// Every mutation reports which listings it made stale so the panel refetches
// only those.
type CatalogAdmin interface {
	UpsertProduct(ctx context.Context, p *domain.Product) (domain.StaleSet, error)
	DeleteProduct(ctx context.Context, id string) (domain.StaleSet, error)
	UpsertService(ctx context.Context, s *domain.Service) (domain.StaleSet, error)
	DeleteService(ctx context.Context, id string) (domain.StaleSet, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// OrderCounter supplies the order figures on the admin dashboard.
type OrderCounter interface {
	CountOrders(ctx context.Context) (int, error)
	CountOrdersSince(ctx context.Context, since time.Time) (int, error)
}

type AdminHandler struct {
	catalog CatalogAdmin
	orders  OrderCounter
	timeout time.Duration
}

func NewAdminHandler(catalog CatalogAdmin, orders OrderCounter, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		orders:  orders,
		timeout: timeout,
	}
}

type UpsertProductRequestDTO struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         string `json:"price"`
	CategoryID    string `json:"category_id"`
	SellerID      string `json:"seller_id"`
	ImageURL      string `json:"image_url,omitempty"`
	IsFeatured    bool   `json:"is_featured"`
	IsActive      bool   `json:"is_active"`
	StockQuantity int    `json:"stock_quantity"`
}

// StaleResponseDTO tells the admin panel which cached listings to refetch
// after a mutation.
type StaleResponseDTO struct {
	ID    string          `json:"id,omitempty"`
	Stale domain.StaleSet `json:"stale"`
}

func (h *AdminHandler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpsertProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.CategoryID == "" || req.SellerID == "" {
		respondError(w, http.StatusBadRequest, "missing_field", "name, category_id and seller_id are required")
		return
	}
	price, err := money.Parse(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must be a non-negative decimal string")
		return
	}
	if req.StockQuantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_stock", "stock_quantity must not be negative")
		return
	}

	product := &domain.Product{
		ID:            req.ID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		CategoryID:    req.CategoryID,
		SellerID:      req.SellerID,
		ImageURL:      req.ImageURL,
		IsFeatured:    req.IsFeatured,
		IsActive:      req.IsActive,
		StockQuantity: req.StockQuantity,
	}
	stale, err := h.catalog.UpsertProduct(ctx, product)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save product")
		return
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	respondJSON(w, status, StaleResponseDTO{ID: product.ID, Stale: stale})
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stale, err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete product")
		return
	}

	respondJSON(w, http.StatusOK, StaleResponseDTO{Stale: stale})
}

type UpsertServiceRequestDTO struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceFrom   string `json:"price_from"`
	PriceType   string `json:"price_type,omitempty"`
	CategoryID  string `json:"category_id"`
	SellerID    string `json:"seller_id"`
	IsFeatured  bool   `json:"is_featured"`
	IsActive    bool   `json:"is_active"`
}

func (h *AdminHandler) UpsertService(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpsertServiceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.CategoryID == "" || req.SellerID == "" {
		respondError(w, http.StatusBadRequest, "missing_field", "name, category_id and seller_id are required")
		return
	}
	price, err := money.Parse(req.PriceFrom)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", "price_from must be a non-negative decimal string")
		return
	}
	switch domain.PriceType(req.PriceType) {
	case "", domain.PriceFixed, domain.PriceFrom, domain.PriceHourly:
	default:
		respondError(w, http.StatusBadRequest, "invalid_price_type", "price_type must be fixed, from or hourly")
		return
	}

	service := &domain.Service{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		PriceFrom:   price,
		PriceType:   domain.PriceType(req.PriceType),
		CategoryID:  req.CategoryID,
		SellerID:    req.SellerID,
		IsFeatured:  req.IsFeatured,
		IsActive:    req.IsActive,
	}
	stale, err := h.catalog.UpsertService(ctx, service)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save service")
		return
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	respondJSON(w, status, StaleResponseDTO{ID: service.ID, Stale: stale})
}

func (h *AdminHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stale, err := h.catalog.DeleteService(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete service")
		return
	}

	respondJSON(w, http.StatusOK, StaleResponseDTO{Stale: stale})
}

type StatsResponseDTO struct {
	TotalProducts int `json:"total_products"`
	TotalServices int `json:"total_services"`
	TotalSellers  int `json:"total_sellers"`
	TotalOrders   int `json:"total_orders"`
	OrdersToday   int `json:"orders_today"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	catalogStats, err := h.catalog.Stats(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load catalog stats")
		return
	}

	totalOrders, err := h.orders.CountOrders(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to count orders")
		return
	}

	midnight := time.Now().Truncate(24 * time.Hour)
	ordersToday, err := h.orders.CountOrdersSince(ctx, midnight)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to count orders")
		return
	}

	respondJSON(w, http.StatusOK, StatsResponseDTO{
		TotalProducts: catalogStats.TotalProducts,
		TotalServices: catalogStats.TotalServices,
		TotalSellers:  catalogStats.TotalSellers,
		TotalOrders:   totalOrders,
		OrdersToday:   ordersToday,
	})
}
