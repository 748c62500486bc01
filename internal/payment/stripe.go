package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
)

// StripeProvider implements Provider on Stripe Checkout. All outbound calls
// go through a circuit breaker so a provider outage fails fast instead of
// tying up checkout requests.
type StripeProvider struct {
	cb *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
}

func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey

	settings := gobreaker.Settings{
		Name:    "stripe",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &StripeProvider{
		cb: gobreaker.NewCircuitBreaker[*stripe.CheckoutSession](settings),
	}
}

func (p *StripeProvider) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
	}
	params.Context = ctx

	s, err := p.cb.Execute(func() (*stripe.CheckoutSession, error) {
		return session.New(params)
	})
	if err != nil {
		return nil, wrapStripeError("create checkout session", err)
	}

	return convertSession(s), nil
}

func (p *StripeProvider) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.cb.Execute(func() (*stripe.CheckoutSession, error) {
		return session.Get(id, params)
	})
	if err != nil {
		return nil, wrapStripeError("get checkout session", err)
	}

	return convertSession(s), nil
}

func convertSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		RedirectURL:   s.URL,
		PaymentStatus: string(s.PaymentStatus),
		CustomerEmail: s.CustomerEmail,
		AmountMinor:   s.AmountTotal,
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}

func wrapStripeError(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", op, ErrProviderUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
