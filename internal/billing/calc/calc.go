// Package calc computes per-line amounts and document totals for sale,
// purchase and estimate documents. Every screen that edits line items goes
// through these functions instead of re-deriving the arithmetic locally.
package calc

import (
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/shared"
)

// LineItem is one editable row of a document.
type LineItem struct {
	ItemID          int64           `json:"item_id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	UOM             string          `json:"uom,omitempty"`
}

// LineAmounts carries the derived figures for a single line. Tax applies to
// the post-discount amount.
type LineAmounts struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	LineAmount     decimal.Decimal `json:"line_amount"`
}

// DocumentTotals aggregates already-rounded line figures into the footer row
// of a document.
type DocumentTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalQty      decimal.Decimal `json:"total_qty"`
	RawTotal      decimal.Decimal `json:"raw_total"`
	RoundOffValue decimal.Decimal `json:"round_off_value"`
	Total         decimal.Decimal `json:"total"`
}

func validateLine(item LineItem) error {
	if money.IsNegative(item.Quantity) {
		return shared.NewInvalidInput("quantity", "must not be negative")
	}
	if money.IsNegative(item.UnitPrice) {
		return shared.NewInvalidInput("unit_price", "must not be negative")
	}
	if !money.InPercentRange(item.DiscountPercent) {
		return shared.NewInvalidInput("discount_percent", "must be between 0 and 100")
	}
	if !money.InPercentRange(item.TaxPercent) {
		return shared.NewInvalidInput("tax_percent", "must be between 0 and 100")
	}
	return nil
}

// ComputeLine derives the amounts for a single line. A zero quantity or zero
// price yields an all-zero result rather than an error so a half-filled form
// row stays valid. Each derived figure is rounded exactly once.
func ComputeLine(item LineItem) (LineAmounts, error) {
	if err := validateLine(item); err != nil {
		return LineAmounts{}, err
	}
	if item.Quantity.IsZero() || item.UnitPrice.IsZero() {
		return LineAmounts{}, nil
	}

	subtotal := item.Quantity.Mul(item.UnitPrice)
	discount := money.Round2(money.Percent(subtotal, item.DiscountPercent))
	taxable := subtotal.Sub(discount)
	tax := money.Round2(money.Percent(taxable, item.TaxPercent))

	return LineAmounts{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		LineAmount:     money.Round2(taxable.Add(tax)),
	}, nil
}

// ComputeTotals folds line items into document totals. The footer sums the
// already-rounded per-line figures, matching what the rows display, instead
// of re-deriving from the raw subtotal. With round-off enabled the total
// snaps to the nearest whole unit and RoundOffValue records the delta, which
// may be negative.
func ComputeTotals(items []LineItem, roundOffEnabled bool) (DocumentTotals, error) {
	var totals DocumentTotals
	totals.Subtotal = money.Zero
	totals.TotalDiscount = money.Zero
	totals.TotalTax = money.Zero
	totals.TotalQty = money.Zero
	totals.RawTotal = money.Zero

	for _, item := range items {
		amounts, err := ComputeLine(item)
		if err != nil {
			return DocumentTotals{}, err
		}
		totals.Subtotal = totals.Subtotal.Add(amounts.Subtotal)
		totals.TotalDiscount = totals.TotalDiscount.Add(amounts.DiscountAmount)
		totals.TotalTax = totals.TotalTax.Add(amounts.TaxAmount)
		totals.TotalQty = totals.TotalQty.Add(item.Quantity)
		totals.RawTotal = totals.RawTotal.Add(amounts.LineAmount)
	}

	if roundOffEnabled {
		totals.Total = money.RoundUnit(totals.RawTotal)
		totals.RoundOffValue = totals.Total.Sub(totals.RawTotal)
	} else {
		totals.RoundOffValue = money.Zero
		totals.Total = totals.RawTotal
	}
	return totals, nil
}

// ValidateRoundOff checks a caller-supplied round-off override against the
// nearest-unit delta from the raw total. Forms may display the value as
// editable but only the computed delta is accepted on save.
func ValidateRoundOff(rawTotal, override decimal.Decimal) error {
	expected := money.RoundUnit(rawTotal).Sub(rawTotal)
	if !override.Equal(expected) {
		return shared.NewInvalidInput("round_off_value", "must equal the nearest-unit delta from the raw total")
	}
	return nil
}
