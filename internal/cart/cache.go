package cart

import (
	"context"
	"errors"

	"github.com/alvbalcab/PetJoy/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, visitorID string) (*domain.Cart, error)
	Set(ctx context.Context, visitorID string, cart *domain.Cart) error
	Delete(ctx context.Context, visitorID string) error
}

var ErrCacheMiss = errors.New("cache miss")
