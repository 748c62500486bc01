package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/alvbalcab/PetJoy/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// OrderReader is what the handler needs from order persistence.
type OrderReader interface {
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetByNumberAndEmail(ctx context.Context, number, email string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(reader OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  reader,
		timeout: timeout,
	}
}

type OrderItemDTO struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size,omitempty"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type OrderResponseDTO struct {
	Number        string          `json:"number"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	PostalCode    string          `json:"postal_code"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	Items         []OrderItemDTO  `json:"items"`
	CreatedAt     string          `json:"created_at"`
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}

	return OrderResponseDTO{
		Number:        o.Number,
		FirstName:     o.FirstName,
		LastName:      o.LastName,
		Email:         o.Email,
		Address:       o.Address,
		City:          o.City,
		PostalCode:    o.PostalCode,
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		Shipping:      o.Shipping,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status.String(),
		Items:         items,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/v1/orders/{number} serves the post-checkout confirmation view.
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	number := chi.URLParam(r, "number")
	if number == "" {
		respondError(w, http.StatusBadRequest, "missing_number", "order number is required")
		return
	}

	order, err := h.orders.GetByNumber(ctx, number)
	if err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

type TrackOrderRequestDTO struct {
	Number string `json:"number"`
	Email  string `json:"email"`
}

// POST /api/v1/orders/track looks an order up by number plus the email it was
// placed with, for visitors without an account.
func (h *OrdersHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req TrackOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Number == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "number and email are required")
		return
	}

	order, err := h.orders.GetByNumberAndEmail(ctx, req.Number, req.Email)
	if err != nil {
		handleOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertOrder(order))
}

// GET /api/v1/orders lists the authenticated customer's past orders, newest
// first.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customerID := getCustomerIDFromContext(r.Context())
	if customerID == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer authentication")
		return
	}

	list, err := h.orders.ListByCustomer(ctx, *customerID)
	if err != nil {
		handleOrderError(w, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(list))
	for _, o := range list {
		dtos = append(dtos, convertOrder(o))
	}

	respondJSON(w, http.StatusOK, dtos)
}

func handleOrderError(w http.ResponseWriter, err error) {
	if errors.Is(err, orders.ErrOrderNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
