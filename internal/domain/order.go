package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Order is the durable record of a completed checkout. Contact fields and item
// prices are snapshots; later product or profile edits never touch it. Only
// Status changes after creation.
type Order struct {
	ID               int64
	Number           string
	CustomerID       *int64
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Address          string
	City             string
	PostalCode       string
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	Shipping         decimal.Decimal
	Total            decimal.Decimal
	PaymentMethod    string
	PaymentSessionID *string
	Status           OrderStatus
	Notes            string
	Items            []OrderItem
	CreatedAt        time.Time
}

// OrderItem is a frozen copy of one cart line.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Size        string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}
