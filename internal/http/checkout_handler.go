package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alvbalcab/PetJoy/internal/checkout"
	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/alvbalcab/PetJoy/internal/payment"
)

// CheckoutService is what the handlers need from the checkout flow.
type CheckoutService interface {
	Checkout(ctx context.Context, visitorID string, customerID *int64, form domain.ShippingDetails) (*domain.Order, checkout.ValidationErrors, error)
	BeginHostedPayment(ctx context.Context, visitorID string, customerID *int64, form domain.ShippingDetails) (string, checkout.ValidationErrors, error)
	CompleteHostedPayment(ctx context.Context, sessionID string) (*domain.Order, error)
	CancelHostedPayment(ctx context.Context, sessionID string) error
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(service CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: service,
		timeout:  timeout,
	}
}

type ShippingFormDTO struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (d ShippingFormDTO) toDomain() domain.ShippingDetails {
	return domain.ShippingDetails{
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		Phone:         d.Phone,
		Address:       d.Address,
		City:          d.City,
		PostalCode:    d.PostalCode,
		PaymentMethod: d.PaymentMethod,
		Notes:         d.Notes,
	}
}

type CheckoutResponseDTO struct {
	OrderNumber string `json:"order_number"`
	Redirect    string `json:"redirect"`
}

type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

// POST /api/v1/checkout runs the direct variant: the order is created on
// submit.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing visitor session")
		return
	}

	var form ShippingFormDTO
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, fieldErrs, err := h.checkout.Checkout(ctx, visitorID, getCustomerIDFromContext(r.Context()), form.toDomain())
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	if fieldErrs != nil {
		respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "shipping details are invalid",
			Code:   "validation_failed",
			Fields: fieldErrs,
		})
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderNumber: order.Number,
		Redirect:    "/orders/" + order.Number,
	})
}

type PaymentSessionResponseDTO struct {
	URL string `json:"url"`
}

// POST /api/v1/checkout/payment-session starts the hosted variant: shipping
// data is parked and the browser is sent to the provider's payment page.
func (h *CheckoutHandler) CreatePaymentSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing visitor session")
		return
	}

	var form ShippingFormDTO
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	url, fieldErrs, err := h.checkout.BeginHostedPayment(ctx, visitorID, getCustomerIDFromContext(r.Context()), form.toDomain())
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	if fieldErrs != nil {
		respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "shipping details are invalid",
			Code:   "validation_failed",
			Fields: fieldErrs,
		})
		return
	}

	respondJSON(w, http.StatusOK, PaymentSessionResponseDTO{URL: url})
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error: "your cart is empty",
			Code:  "empty_cart",
		})
	case errors.Is(err, payment.ErrProviderUnavailable):
		respondError(w, http.StatusBadGateway, "payment_unavailable", "payment provider is unavailable, please try again")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
