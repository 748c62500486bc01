package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/alvbalcab/PetJoy/internal/checkout"
)

// PaymentHandler terminates the provider's browser redirects. These are
// top-level navigations, so responses are redirects to frontend routes, not
// JSON.
type PaymentHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewPaymentHandler(service CheckoutService, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{
		checkout: service,
		timeout:  timeout,
	}
}

// GET /payment/success?session_id=...
// The session id comes from the provider's redirect template; the reported
// status is still re-verified server side before any order is created.
func (h *PaymentHandler) Success(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Redirect(w, r, "/orders/track", http.StatusSeeOther)
		return
	}

	order, err := h.checkout.CompleteHostedPayment(ctx, sessionID)
	switch {
	case err == nil:
		http.Redirect(w, r, "/orders/"+order.Number, http.StatusSeeOther)
	case errors.Is(err, checkout.ErrPaymentNotCompleted):
		http.Redirect(w, r, "/checkout/cancelled", http.StatusSeeOther)
	case errors.Is(err, checkout.ErrStalePaymentReturn):
		// Replayed or expired return with no matching order; send the
		// visitor to tracking instead of creating anything.
		http.Redirect(w, r, "/orders/track", http.StatusSeeOther)
	default:
		log.Printf("payment return for session %s failed: %v", sessionID, err)
		http.Redirect(w, r, "/checkout?error=payment", http.StatusSeeOther)
	}
}

// GET /payment/cancel?session_id=...
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := r.URL.Query().Get("session_id")
	if err := h.checkout.CancelHostedPayment(ctx, sessionID); err != nil {
		log.Printf("cancel payment session %s: %v", sessionID, err)
	}

	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}
