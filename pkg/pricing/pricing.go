// Package pricing holds the pure money math shared by the storefront,
// cart, checkout, and quotation flows. Every caller that shows or charges
// a price goes through this package so display and checkout can never
// drift apart.
package pricing

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/dmendezdev/partsmarket-backend/pkg/errors"
)

// TaxRatePercent is the VAT applied to every line. It is a domain constant,
// not configuration: stored on lines as `16` for display, applied as 0.16.
var TaxRatePercent = decimal.NewFromInt(16)

var (
	hundred = decimal.NewFromInt(100)
	taxRate = TaxRatePercent.Div(hundred)
)

// Overlay is the per-store pricing overlay relevant to price resolution.
// A nil Overlay means the store sells the product at catalog price.
type Overlay struct {
	CustomPrice     *decimal.Decimal
	CustomProfitPct *decimal.Decimal
}

// EffectivePrice resolves the unit price charged for a product in a store.
// Precedence is fixed: a positive custom price wins; otherwise a positive
// custom profit percentage is applied to the base price; otherwise the base
// price stands. Absent fields degrade to the next level, never to an error.
func EffectivePrice(basePrice decimal.Decimal, overlay *Overlay) decimal.Decimal {
	if overlay != nil {
		if overlay.CustomPrice != nil && overlay.CustomPrice.IsPositive() {
			return overlay.CustomPrice.Round(2)
		}
		if overlay.CustomProfitPct != nil && overlay.CustomProfitPct.IsPositive() {
			markup := hundred.Add(*overlay.CustomProfitPct).Div(hundred)
			return basePrice.Mul(markup).Round(2)
		}
	}
	if basePrice.IsNegative() {
		return decimal.Zero
	}
	return basePrice.Round(2)
}

// LineAmounts are the derived amounts for one cart/order/quote line.
type LineAmounts struct {
	UnitPrice      decimal.Decimal
	Quantity       int
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalPrice     decimal.Decimal
}

// ComputeLine derives tax and total for a line. The discount must not exceed
// the gross line amount; over-discounting is rejected rather than clamped so
// a negative total can never be persisted.
func ComputeLine(unitPrice decimal.Decimal, quantity int, discountAmount decimal.Decimal) (LineAmounts, error) {
	if quantity < 1 {
		return LineAmounts{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if discountAmount.IsNegative() {
		return LineAmounts{}, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}

	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if discountAmount.GreaterThan(gross) {
		return LineAmounts{}, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds line subtotal")
	}

	return LineAmounts{
		UnitPrice:      unitPrice.Round(2),
		Quantity:       quantity,
		DiscountAmount: discountAmount.Round(2),
		TaxRate:        TaxRatePercent,
		TaxAmount:      gross.Mul(taxRate).Round(2),
		TotalPrice:     gross.Sub(discountAmount).Round(2),
	}, nil
}

// ComputeLinePct derives a line whose discount is expressed as a percentage
// of the gross amount.
func ComputeLinePct(unitPrice decimal.Decimal, quantity int, discountPct decimal.Decimal) (LineAmounts, error) {
	if discountPct.IsNegative() || discountPct.GreaterThan(hundred) {
		return LineAmounts{}, pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 0 and 100")
	}
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	discount := gross.Mul(discountPct).Div(hundred).Round(2)
	return ComputeLine(unitPrice, quantity, discount)
}

// Totals is the aggregate of a cart, order, or quote.
type Totals struct {
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	ShippingCost  decimal.Decimal
	GrandTotal    decimal.Decimal
}

// Aggregate folds line amounts into document totals. Line discounts are
// already netted into each line's total price, so the grand total is
// subtotal + tax + shipping; DiscountTotal is reported for display only.
// Shipping is flat zero today; the parameter is the policy hook.
func Aggregate(lines []LineAmounts, shippingCost decimal.Decimal) Totals {
	totals := Totals{
		Subtotal:      decimal.Zero,
		TaxTotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		ShippingCost:  shippingCost.Round(2),
	}
	for _, line := range lines {
		totals.Subtotal = totals.Subtotal.Add(line.TotalPrice)
		totals.TaxTotal = totals.TaxTotal.Add(line.TaxAmount)
		totals.DiscountTotal = totals.DiscountTotal.Add(line.DiscountAmount)
	}
	totals.GrandTotal = totals.Subtotal.Add(totals.TaxTotal).Add(totals.ShippingCost)
	return totals
}
