// Package payments validates the split of a received or paid amount across
// payment instruments.
package payments

import (
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/shared"
)

// Method enumerates payment instruments.
type Method string

const (
	MethodCash   Method = "CASH"
	MethodBank   Method = "BANK"
	MethodCheque Method = "CHEQUE"
	MethodUPI    Method = "UPI"
	MethodCard   Method = "CARD"
)

// Valid reports whether the method is a known instrument.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBank, MethodCheque, MethodUPI, MethodCard:
		return true
	}
	return false
}

// Allocation is one slice of a payment against a document total.
type Allocation struct {
	Method      Method          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	ReferenceNo string          `json:"reference_no,omitempty"`
}

// Summary is the result of validating allocations against an amount due.
// FullyPaid uses exact fixed-point equality, never an epsilon comparison.
type Summary struct {
	TotalAllocated decimal.Decimal            `json:"total_allocated"`
	Remaining      decimal.Decimal            `json:"remaining"`
	ByMethod       map[Method]decimal.Decimal `json:"by_method"`
	Overpaid       bool                       `json:"overpaid"`
	FullyPaid      bool                       `json:"fully_paid"`
}

// Allocate sums allocations against the amount due. Repeated allocations of
// the same method accumulate. Overpayment is reported, not rejected; callers
// decide whether it blocks a save or only raises a warning.
func Allocate(totalDue decimal.Decimal, allocations []Allocation) (Summary, error) {
	if money.IsNegative(totalDue) {
		return Summary{}, shared.NewInvalidInput("total_due", "must not be negative")
	}

	total := money.Zero
	byMethod := make(map[Method]decimal.Decimal, len(allocations))
	for _, alloc := range allocations {
		if !alloc.Method.Valid() {
			return Summary{}, shared.NewInvalidInput("method", "unknown payment method")
		}
		if money.IsNegative(alloc.Amount) {
			return Summary{}, shared.NewInvalidInput("amount", "must not be negative")
		}
		total = total.Add(alloc.Amount)
		if prev, ok := byMethod[alloc.Method]; ok {
			byMethod[alloc.Method] = prev.Add(alloc.Amount)
		} else {
			byMethod[alloc.Method] = alloc.Amount
		}
	}

	remaining := totalDue.Sub(total)
	return Summary{
		TotalAllocated: total,
		Remaining:      remaining,
		ByMethod:       byMethod,
		Overpaid:       remaining.Sign() < 0,
		FullyPaid:      remaining.IsZero(),
	}, nil
}

// RequireSettled validates allocations that must match the amount due
// exactly, as on payment-in/payment-out vouchers.
func RequireSettled(totalDue decimal.Decimal, allocations []Allocation) (Summary, error) {
	summary, err := Allocate(totalDue, allocations)
	if err != nil {
		return Summary{}, err
	}
	if !summary.FullyPaid {
		return Summary{}, shared.ErrInconsistentAllocation
	}
	return summary, nil
}
