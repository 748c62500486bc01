package cart

import (
	"context"
	"errors"

	"github.com/alvbalcab/PetJoy/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the interface for cart data operations
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	GetCart(ctx context.Context, visitorID string) (*domain.Cart, error)
	AddItem(ctx context.Context, visitorID string, item domain.CartItem, overwrite bool) error
	RemoveItem(ctx context.Context, visitorID string, productID int64, size string) error
	DeleteCart(ctx context.Context, visitorID string) error
}
