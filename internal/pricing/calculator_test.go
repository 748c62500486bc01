package pricing

import (
	"testing"

	"github.com/alvbalcab/PetJoy/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testCalculator() *Calculator {
	return NewCalculator(
		ThresholdShippingPolicy{
			FlatRate: decimal.RequireFromString("4.95"),
			FreeOver: decimal.RequireFromString("50"),
		},
		FlatTaxPolicy{Rate: decimal.Zero},
	)
}

func TestQuote_BelowFreeShippingThreshold(t *testing.T) {
	sut := testCalculator()
	quote := sut.Quote([]domain.CartLine{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
	})

	assert.Equal(t, "39.98", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "4.95", quote.Shipping.StringFixed(2))
	assert.Equal(t, "0.00", quote.Tax.StringFixed(2))
	assert.Equal(t, "44.93", quote.Total.StringFixed(2))
}

func TestQuote_AtFreeShippingThreshold(t *testing.T) {
	sut := testCalculator()
	quote := sut.Quote([]domain.CartLine{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("25.00")},
	})

	assert.Equal(t, "50.00", quote.Subtotal.StringFixed(2))
	assert.True(t, quote.Shipping.IsZero(), "shipping must be free at the threshold")
	assert.Equal(t, "50.00", quote.Total.StringFixed(2))
}

func TestQuote_AboveFreeShippingThreshold(t *testing.T) {
	sut := testCalculator()
	quote := sut.Quote([]domain.CartLine{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
	})

	assert.Equal(t, "59.97", quote.Subtotal.StringFixed(2))
	assert.True(t, quote.Shipping.IsZero())
	assert.Equal(t, "59.97", quote.Total.StringFixed(2))
}

func TestQuote_EmptyCart(t *testing.T) {
	sut := testCalculator()
	quote := sut.Quote(nil)

	assert.True(t, quote.Subtotal.IsZero())
	assert.Equal(t, "4.95", quote.Shipping.StringFixed(2))
	assert.Equal(t, "4.95", quote.Total.StringFixed(2))
}

func TestQuote_WithTax(t *testing.T) {
	sut := NewCalculator(
		ThresholdShippingPolicy{
			FlatRate: decimal.RequireFromString("4.95"),
			FreeOver: decimal.RequireFromString("50"),
		},
		FlatTaxPolicy{Rate: decimal.RequireFromString("0.21")},
	)

	quote := sut.Quote([]domain.CartLine{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
	})

	assert.Equal(t, "10.00", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "2.10", quote.Tax.StringFixed(2))
	assert.Equal(t, "4.95", quote.Shipping.StringFixed(2))
	assert.Equal(t, "17.05", quote.Total.StringFixed(2))
}

func TestQuote_RoundsToTwoDecimals(t *testing.T) {
	sut := NewCalculator(
		ThresholdShippingPolicy{
			FlatRate: decimal.RequireFromString("4.95"),
			FreeOver: decimal.RequireFromString("50"),
		},
		FlatTaxPolicy{Rate: decimal.RequireFromString("0.0725")},
	)

	quote := sut.Quote([]domain.CartLine{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("3.33")},
	})

	// 9.99 * 0.0725 = 0.724275 -> 0.72
	assert.Equal(t, "0.72", quote.Tax.StringFixed(2))
	assert.Equal(t, "15.66", quote.Total.StringFixed(2))
}

func TestQuote_MultipleLines(t *testing.T) {
	sut := testCalculator()
	quote := sut.Quote([]domain.CartLine{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
		{ProductID: 2, Size: "M", Quantity: 1, UnitPrice: decimal.RequireFromString("7.50")},
	})

	assert.Equal(t, "47.48", quote.Subtotal.StringFixed(2))
	assert.Equal(t, "4.95", quote.Shipping.StringFixed(2))
	assert.Equal(t, "52.43", quote.Total.StringFixed(2))
}
