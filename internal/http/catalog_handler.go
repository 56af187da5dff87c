package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leonjames-san/familiams/internal/catalog/domain"
	"github.com/leonjames-san/familiams/internal/catalog/repository"
)

// CatalogReader is the read-only slice of the catalog the storefront needs.
type CatalogReader interface {
	ListProducts(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListServices(ctx context.Context, filter domain.ListFilter) ([]*domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	ListSellers(ctx context.Context) ([]*domain.Seller, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// ReviewWriter accepts customer reviews.
type ReviewWriter interface {
	AddReview(ctx context.Context, r *domain.Review) (domain.StaleSet, error)
}

type CatalogHandler struct {
	catalog CatalogReader
	reviews ReviewWriter
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogReader, reviews ReviewWriter, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		reviews: reviews,
		timeout: timeout,
	}
}

type ProductDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         string  `json:"price"`
	Category      string  `json:"category"`
	Seller        string  `json:"seller"`
	ImageURL      string  `json:"image_url,omitempty"`
	IsFeatured    bool    `json:"is_featured"`
	IsActive      bool    `json:"is_active"`
	StockQuantity int     `json:"stock_quantity"`
	AvgRating     float64 `json:"avg_rating"`
	ReviewCount   int     `json:"review_count"`
}

func toProductDTO(p *domain.Product) ProductDTO {
	return ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.String(),
		Category:      p.CategoryName,
		Seller:        p.SellerName,
		ImageURL:      p.ImageURL,
		IsFeatured:    p.IsFeatured,
		IsActive:      p.IsActive,
		StockQuantity: p.StockQuantity,
		AvgRating:     p.AvgRating,
		ReviewCount:   p.ReviewCount,
	}
}

type ServiceDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceFrom   string  `json:"price_from"`
	PriceType   string  `json:"price_type"`
	Category    string  `json:"category"`
	Seller      string  `json:"seller"`
	IsFeatured  bool    `json:"is_featured"`
	IsActive    bool    `json:"is_active"`
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

func toServiceDTO(s *domain.Service) ServiceDTO {
	return ServiceDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		PriceFrom:   s.PriceFrom.String(),
		PriceType:   string(s.PriceType),
		Category:    s.CategoryName,
		Seller:      s.SellerName,
		IsFeatured:  s.IsFeatured,
		IsActive:    s.IsActive,
		AvgRating:   s.AvgRating,
		ReviewCount: s.ReviewCount,
	}
}

type SellerDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Role           string   `json:"role,omitempty"`
	AvatarURL      string   `json:"avatar_url,omitempty"`
	Specialties    []string `json:"specialties,omitempty"`
	IsFamilyMember bool     `json:"is_family_member"`
}

type CategoryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

func listFilterFromQuery(r *http.Request) domain.ListFilter {
	return domain.ListFilter{
		Category:   r.URL.Query().Get("category"),
		ActiveOnly: r.URL.Query().Get("include_inactive") != "true",
	}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, listFilterFromQuery(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list products")
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	respondJSON(w, http.StatusOK, toProductDTO(p))
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	services, err := h.catalog.ListServices(ctx, listFilterFromQuery(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list services")
		return
	}

	dtos := make([]ServiceDTO, 0, len(services))
	for _, s := range services {
		dtos = append(dtos, toServiceDTO(s))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, err := h.catalog.GetService(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "service not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load service")
		return
	}

	respondJSON(w, http.StatusOK, toServiceDTO(s))
}

func (h *CatalogHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sellers, err := h.catalog.ListSellers(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list sellers")
		return
	}

	dtos := make([]SellerDTO, 0, len(sellers))
	for _, s := range sellers {
		dtos = append(dtos, SellerDTO{
			ID:             s.ID,
			Name:           s.Name,
			Role:           s.Role,
			AvatarURL:      s.AvatarURL,
			Specialties:    s.Specialties,
			IsFamilyMember: s.IsFamilyMember,
		})
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list categories")
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryDTO{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Icon:        c.Icon,
		})
	}
	respondJSON(w, http.StatusOK, dtos)
}

type AddReviewRequestDTO struct {
	ProductID     *string `json:"product_id,omitempty"`
	ServiceID     *string `json:"service_id,omitempty"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	Rating        int     `json:"rating"`
	Comment       string  `json:"comment,omitempty"`
}

func (h *CatalogHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if (req.ProductID == nil) == (req.ServiceID == nil) {
		respondError(w, http.StatusBadRequest, "invalid_target", "review must name exactly one product or service")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
		return
	}
	if req.CustomerName == "" {
		respondError(w, http.StatusBadRequest, "missing_customer_name", "customer_name is required")
		return
	}

	// Reject reviews for items that do not exist.
	if req.ProductID != nil {
		if _, err := h.catalog.GetProduct(ctx, *req.ProductID); err != nil {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
	} else {
		if _, err := h.catalog.GetService(ctx, *req.ServiceID); err != nil {
			respondError(w, http.StatusNotFound, "not_found", "service not found")
			return
		}
	}

	review := &domain.Review{
		ProductID:     req.ProductID,
		ServiceID:     req.ServiceID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	stale, err := h.reviews.AddReview(ctx, review)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save review")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    review.ID,
		"stale": stale,
	})
}
