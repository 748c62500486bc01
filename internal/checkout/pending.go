package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/redis/go-redis/v9"
)

var ErrPendingNotFound = errors.New("pending checkout not found")

// PendingCheckout is the shipping data held while the visitor is away on the
// hosted payment page. It is keyed by the payment session id so the return
// handler can find it without touching the visitor cookie.
type PendingCheckout struct {
	VisitorID  string                 `json:"visitor_id"`
	CustomerID *int64                 `json:"customer_id,omitempty"`
	Shipping   domain.ShippingDetails `json:"shipping"`
	Status     domain.CheckoutStatus  `json:"status"`
	CreatedAt  time.Time              `json:"created_at"`
}

type PendingStore interface {
	Put(ctx context.Context, sessionID string, pc *PendingCheckout) error
	Get(ctx context.Context, sessionID string) (*PendingCheckout, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisPendingStore persists pending checkouts with a TTL so abandoned hosted
// flows expire instead of lingering.
type RedisPendingStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{
		client: client,
		ttl:    30 * time.Minute,
	}
}

func (r *RedisPendingStore) Put(ctx context.Context, sessionID string, pc *PendingCheckout) error {
	data, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("marshal pending checkout failed: %w", err)
	}

	if err := r.client.Set(ctx, pendingKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisPendingStore) Get(ctx context.Context, sessionID string) (*PendingCheckout, error) {
	data, err := r.client.Get(ctx, pendingKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var pc PendingCheckout
	if err2 := json.Unmarshal(data, &pc); err2 != nil {
		return nil, fmt.Errorf("unmarshal pending checkout failed: %w", err2)
	}
	return &pc, nil
}

func (r *RedisPendingStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, pendingKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func pendingKey(sessionID string) string {
	return fmt.Sprintf("checkout:pending:%s", sessionID)
}
