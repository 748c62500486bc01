package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string     `bson:"_id,omitempty"`
	VisitorID string     `bson:"visitor_id"`
	Items     []CartItem `bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// CartItem is one cart line, keyed by (product_id, size).
type CartItem struct {
	ProductID int64     `bson:"product_id"`
	Size      string    `bson:"size"`
	Quantity  int32     `bson:"quantity"`
	UnitPrice string    `bson:"unit_price"` // effective price when the line was written, decimal string
	AddedAt   time.Time `bson:"added_at"`
}

// CartLine is a read view of a cart item priced at view time.
type CartLine struct {
	ProductID   int64
	ProductName string
	Size        string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}
