// Package pricing computes line and document totals for tax-inclusive unit
// prices. Everything here is pure: no storage, no side effects, so the same
// functions serve sales, quotes and purchase orders.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Discount types, mirrored from the document model.
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// Tolerance is the absolute rounding tolerance for monetary comparisons:
// one cent in the currency's minor unit.
var Tolerance = decimal.New(1, -2)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("unit price must be greater than zero")
	ErrInvalidTaxRate  = errors.New("tax rate must be between 0 and 100")
)

var (
	hundred = decimal.NewFromInt(100)
)

// Line is one document line as entered: quantity, tax-inclusive unit price,
// tax rate in [0,100], and an optional per-line discount.
type Line struct {
	Quantity      int
	UnitPrice     decimal.Decimal
	TaxRate       decimal.Decimal
	DiscountType  string // "" = no discount
	DiscountValue decimal.Decimal
}

// LineResult carries the derived amounts for one line.
// Subtotal + TaxAmount == Total holds exactly by construction.
type LineResult struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// DocumentTotals carries the derived amounts for a whole document.
// Total = Subtotal + TaxAmount - DiscountAmount holds exactly by
// construction, even with a flat document discount.
type DocumentTotals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// Discount computes the discount amount for a base, rounded to cents.
// A FIXED discount is capped at the base; a PERCENTAGE one must be in [0,100].
func Discount(base decimal.Decimal, discountType string, value decimal.Decimal) (decimal.Decimal, error) {
	switch discountType {
	case "":
		return decimal.Zero, nil
	case DiscountPercentage:
		if value.IsNegative() || value.GreaterThan(hundred) {
			return decimal.Zero, fmt.Errorf("percentage discount %s out of range", value)
		}
		return base.Mul(value).Div(hundred).Round(2), nil
	case DiscountFixed:
		if value.IsNegative() {
			return decimal.Zero, fmt.Errorf("fixed discount %s is negative", value)
		}
		if value.GreaterThan(base) {
			return base, nil
		}
		return value.Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown discount type %q", discountType)
	}
}

// ComputeLine derives the amounts for one line. Because the unit price is tax
// inclusive, the tax portion is extracted, not added:
//
//	tax = total × rate / (100 + rate)
//
// A 100%-off line yields zero total and zero tax. rate = 0 is safe (divisor
// is 100).
func ComputeLine(l Line) (LineResult, error) {
	if l.Quantity <= 0 {
		return LineResult{}, ErrInvalidQuantity
	}
	if !l.UnitPrice.IsPositive() {
		return LineResult{}, ErrInvalidPrice
	}
	if l.TaxRate.IsNegative() || l.TaxRate.GreaterThan(hundred) {
		return LineResult{}, ErrInvalidTaxRate
	}

	base := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
	discount, err := Discount(base, l.DiscountType, l.DiscountValue)
	if err != nil {
		return LineResult{}, err
	}

	total := base.Sub(discount)
	tax := total.Mul(l.TaxRate).Div(hundred.Add(l.TaxRate)).Round(2)

	return LineResult{
		Subtotal:       total.Sub(tax),
		TaxAmount:      tax,
		DiscountAmount: discount,
		Total:          total,
	}, nil
}

// ComputeDocument applies the document-level discount to the summed line
// totals and re-derives the document tax proportionally:
//
//	ratio = grossAfterDiscount / grossBeforeDiscount
//	tax   = Σ lineTax × ratio
//
// so the invariant total = subtotal + tax - discount survives flat discounts
// that do not divide evenly across lines. A zero gross (fully discounted
// document) degenerates to ratio 1.
func ComputeDocument(lines []LineResult, discountType string, discountValue decimal.Decimal) (DocumentTotals, error) {
	gross := decimal.Zero
	lineTax := decimal.Zero
	for _, l := range lines {
		gross = gross.Add(l.Total)
		lineTax = lineTax.Add(l.TaxAmount)
	}

	discount, err := Discount(gross, discountType, discountValue)
	if err != nil {
		return DocumentTotals{}, err
	}

	total := gross.Sub(discount)

	tax := lineTax
	if gross.IsPositive() && !discount.IsZero() {
		ratio := total.Div(gross)
		tax = lineTax.Mul(ratio).Round(2)
	}

	return DocumentTotals{
		Subtotal:       gross.Sub(tax),
		TaxAmount:      tax,
		DiscountAmount: discount,
		Total:          total,
	}, nil
}

// WithinTolerance reports whether two amounts differ by at most one cent.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
