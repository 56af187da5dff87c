package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/leonjames-san/familiams/internal/checkout"
	orderdomain "github.com/leonjames-san/familiams/internal/order/domain"
	orderrepo "github.com/leonjames-san/familiams/internal/order/repository"
)

// OrderSubmitter runs the checkout for a session's cart.
type OrderSubmitter interface {
	Submit(ctx context.Context, sessionID string, customer checkout.Customer, method checkout.PaymentMethod) (*orderdomain.Order, error)
}

// OrderReader loads persisted orders for the confirmation page.
type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*orderdomain.Order, error)
}

type CheckoutHandler struct {
	checkout OrderSubmitter
	orders   OrderReader
	timeout  time.Duration
}

func NewCheckoutHandler(checkout OrderSubmitter, orders OrderReader, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		orders:   orders,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	PaymentMethod string `json:"payment_method"`
}

type OrderResponseDTO struct {
	ID            string                  `json:"id"`
	CustomerName  string                  `json:"customer_name"`
	PaymentMethod string                  `json:"payment_method"`
	TotalAmount   string                  `json:"total_amount"`
	Status        string                  `json:"status"`
	Items         []orderdomain.OrderItem `json:"items"`
	CreatedAt     time.Time               `json:"created_at"`
}

func toOrderResponse(o *orderdomain.Order) OrderResponseDTO {
	return OrderResponseDTO{
		ID:            o.ID.String(),
		CustomerName:  o.CustomerName,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount.String(),
		Status:        string(o.Status),
		Items:         o.Items,
		CreatedAt:     o.CreatedAt,
	}
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	method, err := checkout.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment_method must be pix, card or bank_slip")
		return
	}

	customer := checkout.Customer{
		Name:  req.Customer.Name,
		Email: req.Customer.Email,
		Phone: req.Customer.Phone,
	}

	order, err := h.checkout.Submit(ctx, sessionFromContext(r.Context()), customer, method)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var missing *checkout.MissingFieldError
	switch {
	case errors.As(err, &missing):
		respondError(w, http.StatusBadRequest, "missing_field", fmt.Sprintf("customer %s is required", missing.Field))
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart is empty")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "order processing is temporarily unavailable, try again shortly")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to place order")
	}
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	order, err := h.orders.GetOrderByID(ctx, id)
	if errors.Is(err, orderrepo.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	respondJSON(w, http.StatusOK, toOrderResponse(order))
}
