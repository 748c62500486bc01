package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/alvbalcab/PetJoy/internal/email"
	"github.com/alvbalcab/PetJoy/internal/orders"
	"github.com/alvbalcab/PetJoy/internal/payment"
	"github.com/alvbalcab/PetJoy/internal/pricing"
	"github.com/google/uuid"
)

// CartService is what checkout needs from the cart.
type CartService interface {
	Len(ctx context.Context, visitorID string) (int, error)
	Lines(ctx context.Context, visitorID string) ([]domain.CartLine, error)
	Clear(ctx context.Context, visitorID string) error
}

// OrderStore is what checkout needs from order persistence.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error)
}

type Config struct {
	BaseURL  string
	Currency string
	Company  email.CompanyInfo
}

type Service struct {
	cart     CartService
	calc     *pricing.Calculator
	orders   OrderStore
	provider payment.Provider
	pending  PendingStore
	mailer   email.Sender
	cfg      Config
}

func NewService(cart CartService, calc *pricing.Calculator, orderStore OrderStore,
	provider payment.Provider, pending PendingStore, mailer email.Sender, cfg Config) *Service {
	return &Service{
		cart:     cart,
		calc:     calc,
		orders:   orderStore,
		provider: provider,
		pending:  pending,
		mailer:   mailer,
		cfg:      cfg,
	}
}

// Checkout runs the direct variant: validate, snapshot totals, persist the
// order atomically, decrement stock, send the confirmation best effort, then
// clear the cart. Field-level problems come back as ValidationErrors with a
// nil error.
func (s *Service) Checkout(ctx context.Context, visitorID string, customerID *int64, form domain.ShippingDetails) (*domain.Order, ValidationErrors, error) {
	n, err := s.cart.Len(ctx, visitorID)
	if err != nil {
		return nil, nil, fmt.Errorf("read cart: %w", err)
	}
	if n == 0 {
		return nil, nil, ErrEmptyCart
	}

	if ve := ValidateShipping(&form); ve != nil {
		return nil, ve, nil
	}

	order, err := s.placeOrder(ctx, visitorID, customerID, form, domain.OrderStatusPending, nil)
	if err != nil {
		return nil, nil, err
	}
	return order, nil, nil
}

// BeginHostedPayment validates the shipping form, parks it in the pending
// store and creates a hosted payment session. The returned URL is where the
// browser must be sent; the order is created only on the provider's success
// return.
func (s *Service) BeginHostedPayment(ctx context.Context, visitorID string, customerID *int64, form domain.ShippingDetails) (string, ValidationErrors, error) {
	lines, err := s.cart.Lines(ctx, visitorID)
	if err != nil {
		return "", nil, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		return "", nil, ErrEmptyCart
	}

	if ve := ValidateShipping(&form); ve != nil {
		return "", ve, nil
	}

	quote := s.calc.Quote(lines)
	req := &payment.SessionRequest{
		AmountMinor:   quote.Total.Shift(2).IntPart(),
		Currency:      s.cfg.Currency,
		Description:   describeCart(s.cfg.Company.Name, lines),
		CustomerEmail: form.Email,
		SuccessURL:    s.cfg.BaseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.BaseURL + "/payment/cancel?session_id={CHECKOUT_SESSION_ID}",
	}

	sess, err := s.provider.CreateSession(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("create payment session: %w", err)
	}

	pc := &PendingCheckout{
		VisitorID:  visitorID,
		CustomerID: customerID,
		Shipping:   form,
		Status:     domain.CheckoutStatusPaymentPending,
		CreatedAt:  time.Now(),
	}
	if err := s.pending.Put(ctx, sess.ID, pc); err != nil {
		// The provider session exists but we cannot complete it without the
		// shipping data; the visitor retries from the shipping step.
		return "", nil, fmt.Errorf("store pending checkout: %w", err)
	}

	return sess.RedirectURL, nil, nil
}

// CompleteHostedPayment is the success-return handler's entry point. The
// session is re-fetched from the provider and must report paid; a missing
// pending record or a duplicate insert both resolve to the order that already
// exists, so a replayed success URL never creates a second order.
func (s *Service) CompleteHostedPayment(ctx context.Context, sessionID string) (*domain.Order, error) {
	sess, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("verify payment session: %w", err)
	}
	if !sess.Paid() {
		return nil, ErrPaymentNotCompleted
	}

	pc, err := s.pending.Get(ctx, sessionID)
	if errors.Is(err, ErrPendingNotFound) {
		existing, lookupErr := s.orders.GetByPaymentSession(ctx, sessionID)
		if lookupErr == nil {
			return existing, nil
		}
		if errors.Is(lookupErr, orders.ErrOrderNotFound) {
			return nil, ErrStalePaymentReturn
		}
		return nil, lookupErr
	}
	if err != nil {
		return nil, err
	}

	if !domain.CanTransitionTo(pc.Status, domain.CheckoutStatusCompleted) {
		return nil, IllegalTransitionError
	}

	order, err := s.placeOrder(ctx, pc.VisitorID, pc.CustomerID, pc.Shipping, domain.OrderStatusPaid, &sessionID)
	if errors.Is(err, orders.ErrDuplicateOrder) {
		// A concurrent completion for the same session won the insert.
		log.Printf("duplicate payment return for session %s", sessionID)
		order, err = s.orders.GetByPaymentSession(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}

	if errDel := s.pending.Delete(ctx, sessionID); errDel != nil {
		log.Printf("delete pending checkout %s: %v", sessionID, errDel)
	}
	return order, nil
}

// CancelHostedPayment drops the pending state for an abandoned payment. No
// order exists and no stock was touched.
func (s *Service) CancelHostedPayment(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.pending.Delete(ctx, sessionID)
}

func (s *Service) placeOrder(ctx context.Context, visitorID string, customerID *int64,
	form domain.ShippingDetails, status domain.OrderStatus, sessionID *string) (*domain.Order, error) {

	lines, err := s.cart.Lines(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	quote := s.calc.Quote(lines)

	order := &domain.Order{
		Number:           NewOrderNumber(),
		CustomerID:       customerID,
		FirstName:        form.FirstName,
		LastName:         form.LastName,
		Email:            form.Email,
		Phone:            form.Phone,
		Address:          form.Address,
		City:             form.City,
		PostalCode:       form.PostalCode,
		Subtotal:         quote.Subtotal,
		Tax:              quote.Tax,
		Shipping:         quote.Shipping,
		Total:            quote.Total,
		PaymentMethod:    form.PaymentMethod,
		PaymentSessionID: sessionID,
		Status:           status,
		Notes:            form.Notes,
		Items:            itemsFromLines(lines),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, order)

	if errClear := s.cart.Clear(ctx, visitorID); errClear != nil {
		log.Printf("clear cart after order %s: %v", order.Number, errClear)
	}

	return order, nil
}

func (s *Service) sendConfirmation(ctx context.Context, order *domain.Order) {
	subject, body, err := email.RenderConfirmation(order, s.cfg.Company)
	if err != nil {
		log.Printf("render confirmation for order %s: %v", order.Number, err)
		return
	}

	msg := &email.Message{
		To:      []string{order.Email},
		Subject: subject,
		Body:    body,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Printf("send confirmation for order %s: %v", order.Number, err)
	}
}

func itemsFromLines(lines []domain.CartLine) []domain.OrderItem {
	items := make([]domain.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Size:        line.Size,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total,
		}
	}
	return items
}

func describeCart(shopName string, lines []domain.CartLine) string {
	var count int32
	for _, line := range lines {
		count += line.Quantity
	}
	return fmt.Sprintf("%s order (%d items)", shopName, count)
}

// NewOrderNumber builds the human-facing order number. The UUID source keeps
// it collision-free under concurrent creation; the orders table enforces
// uniqueness anyway.
func NewOrderNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "ORD-" + raw[:12]
}
