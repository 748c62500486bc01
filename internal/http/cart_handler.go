package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alvbalcab/PetJoy/internal/cart"
	"github.com/alvbalcab/PetJoy/internal/catalog"
	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/alvbalcab/PetJoy/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CartService is what the handler needs from the cart.
type CartService interface {
	Add(ctx context.Context, visitorID string, productID int64, size string, quantity int32, overwrite bool) error
	Remove(ctx context.Context, visitorID string, productID int64, size string) error
	Clear(ctx context.Context, visitorID string) error
	Lines(ctx context.Context, visitorID string) ([]domain.CartLine, error)
}

// Quoter prices the current cart contents.
type Quoter interface {
	Quote(lines []domain.CartLine) pricing.Quote
}

type CartHandler struct {
	carts   CartService
	pricing Quoter
	timeout time.Duration
}

func NewCartHandler(carts CartService, quoter Quoter, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		pricing: quoter,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

type UpdateItemRequestDTO struct {
	Quantity int32  `json:"quantity"`
	Size     string `json:"size,omitempty"`
}

type CartLineDTO struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size,omitempty"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

type CartResponseDTO struct {
	Items    []CartLineDTO   `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing visitor session")
		return
	}

	h.respondCart(ctx, w, http.StatusOK, visitorID)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing visitor session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	err := h.carts.Add(ctx, visitorID, req.ProductID, req.Size, req.Quantity, false)
	if err != nil {
		handleCartError(w, err)
		return
	}

	h.respondCart(ctx, w, http.StatusCreated, visitorID)
}

// PUT /api/v1/cart/items/{product_id} replaces the line quantity; quantity 0
// removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing visitor session")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	var err error
	if req.Quantity == 0 {
		err = h.carts.Remove(ctx, visitorID, productID, req.Size)
	} else {
		err = h.carts.Add(ctx, visitorID, productID, req.Size, req.Quantity, true)
	}
	if err != nil {
		handleCartError(w, err)
		return
	}

	h.respondCart(ctx, w, http.StatusOK, visitorID)
}

// DELETE /api/v1/cart/items/{product_id}?size=M
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing visitor session")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.carts.Remove(ctx, visitorID, productID, r.URL.Query().Get("size")); err != nil {
		handleCartError(w, err)
		return
	}

	h.respondCart(ctx, w, http.StatusOK, visitorID)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing visitor session")
		return
	}

	if err := h.carts.Clear(ctx, visitorID); err != nil {
		handleCartError(w, err)
		return
	}

	h.respondCart(ctx, w, http.StatusOK, visitorID)
}

func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, status int, visitorID string) {
	lines, err := h.carts.Lines(ctx, visitorID)
	if err != nil {
		handleCartError(w, err)
		return
	}

	quote := h.pricing.Quote(lines)

	dtos := make([]CartLineDTO, 0, len(lines))
	for _, line := range lines {
		dtos = append(dtos, CartLineDTO{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total,
		})
	}

	respondJSON(w, status, CartResponseDTO{
		Items:    dtos,
		Subtotal: quote.Subtotal,
		Shipping: quote.Shipping,
		Tax:      quote.Tax,
		Total:    quote.Total,
	})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, cart.ErrProductUnavailable):
		respondError(w, http.StatusConflict, "unavailable", "product is not available")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
