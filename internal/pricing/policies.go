package pricing

import "github.com/shopspring/decimal"

// ThresholdShippingPolicy charges a flat rate below the free-shipping
// threshold and nothing at or above it.
type ThresholdShippingPolicy struct {
	FlatRate decimal.Decimal
	FreeOver decimal.Decimal
}

func (p ThresholdShippingPolicy) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeOver) {
		return decimal.Zero
	}
	return p.FlatRate
}

// FlatTaxPolicy applies a single rate to the subtotal.
type FlatTaxPolicy struct {
	Rate decimal.Decimal
}

func (p FlatTaxPolicy) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.Rate)
}
