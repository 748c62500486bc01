package payment

import (
	"context"
	"errors"
)

// StatusPaid is the only provider-reported status that allows order creation.
const StatusPaid = "paid"

var ErrProviderUnavailable = errors.New("payment provider unavailable")

// SessionRequest describes the hosted payment page to create. Amounts are in
// minor currency units.
type SessionRequest struct {
	AmountMinor   int64
	Currency      string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Session is the provider's record of a pending or settled payment.
type Session struct {
	ID            string
	RedirectURL   string
	PaymentStatus string
	CustomerEmail string
	AmountMinor   int64
}

func (s *Session) Paid() bool {
	return s.PaymentStatus == StatusPaid
}

// Provider creates hosted payment sessions and re-fetches them for
// server-side verification. A client-reported success flag is never enough.
type Provider interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}
