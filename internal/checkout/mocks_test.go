package checkout

import (
	"context"
	"sync"

	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/alvbalcab/PetJoy/internal/email"
	"github.com/alvbalcab/PetJoy/internal/orders"
	"github.com/alvbalcab/PetJoy/internal/payment"
)

// mockCart implements CartService for testing
type mockCart struct {
	m       sync.Mutex
	lines   []domain.CartLine
	err     error
	cleared bool
}

func (m *mockCart) Len(context.Context, string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.lines), nil
}

func (m *mockCart) Lines(context.Context, string) ([]domain.CartLine, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lines, nil
}

func (m *mockCart) Clear(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cleared = true
	return nil
}

// mockOrderStore implements OrderStore for testing
type mockOrderStore struct {
	m         sync.Mutex
	created   []*domain.Order
	createErr error
	bySession map[string]*domain.Order
}

func (m *mockOrderStore) CreateOrder(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if order.PaymentSessionID != nil {
		if _, exists := m.bySession[*order.PaymentSessionID]; exists {
			return orders.ErrDuplicateOrder
		}
		if m.bySession == nil {
			m.bySession = map[string]*domain.Order{}
		}
		m.bySession[*order.PaymentSessionID] = order
	}
	m.created = append(m.created, order)
	return nil
}

func (m *mockOrderStore) GetByPaymentSession(_ context.Context, sessionID string) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	order, ok := m.bySession[sessionID]
	if !ok {
		return nil, orders.ErrOrderNotFound
	}
	return order, nil
}

// mockProvider implements payment.Provider for testing
type mockProvider struct {
	session    *payment.Session
	createErr  error
	getErr     error
	createdReq *payment.SessionRequest
}

func (m *mockProvider) CreateSession(_ context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	m.createdReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.session, nil
}

func (m *mockProvider) GetSession(context.Context, string) (*payment.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.session, nil
}

// mockPendingStore implements PendingStore for testing
type mockPendingStore struct {
	m       sync.Mutex
	entries map[string]*PendingCheckout
	putErr  error
}

func (m *mockPendingStore) Put(_ context.Context, sessionID string, pc *PendingCheckout) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if m.entries == nil {
		m.entries = map[string]*PendingCheckout{}
	}
	m.entries[sessionID] = pc
	return nil
}

func (m *mockPendingStore) Get(_ context.Context, sessionID string) (*PendingCheckout, error) {
	m.m.Lock()
	defer m.m.Unlock()
	pc, ok := m.entries[sessionID]
	if !ok {
		return nil, ErrPendingNotFound
	}
	return pc, nil
}

func (m *mockPendingStore) Delete(_ context.Context, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// mockSender implements email.Sender for testing
type mockSender struct {
	m    sync.Mutex
	sent []*email.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg *email.Message) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
