package pricing

import (
	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/shopspring/decimal"
)

// Quote holds the monetary breakdown for a cart at one instant.
type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ShippingPolicy derives the shipping cost from the cart subtotal. The rule
// table behind it is a collaborator, not part of the calculator.
type ShippingPolicy interface {
	Cost(subtotal decimal.Decimal) decimal.Decimal
}

// TaxPolicy derives the tax amount from the cart subtotal.
type TaxPolicy interface {
	Tax(subtotal decimal.Decimal) decimal.Decimal
}

type Calculator struct {
	shipping ShippingPolicy
	tax      TaxPolicy
}

func NewCalculator(shipping ShippingPolicy, tax TaxPolicy) *Calculator {
	return &Calculator{
		shipping: shipping,
		tax:      tax,
	}
}

// Quote computes subtotal, shipping, tax and grand total from the given lines.
// Lines already carry the effective unit price at view time.
func (c *Calculator) Quote(lines []domain.CartLine) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt32(line.Quantity)))
	}
	subtotal = subtotal.Round(2)

	shipping := c.shipping.Cost(subtotal).Round(2)
	tax := c.tax.Tax(subtotal).Round(2)

	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
