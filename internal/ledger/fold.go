package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/shared"
)

// Apply advances a running balance by one entry.
func Apply(prev decimal.Decimal, e Entry) decimal.Decimal {
	return prev.Add(e.Credit).Sub(e.Debit)
}

// Chronological reports whether entries are ordered by date, with insertion
// sequence as the tie-break.
func Chronological(entries []Entry) bool {
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Date.Before(prev.Date) {
			return false
		}
		if cur.Date.Equal(prev.Date) && cur.Seq < prev.Seq {
			return false
		}
	}
	return true
}

// Fold recalculates every balance from the opening balance. The input slice
// is not modified.
func Fold(opening decimal.Decimal, entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	balance := opening
	for i, e := range entries {
		balance = Apply(balance, e)
		e.Balance = balance
		out[i] = e
	}
	return out
}

// RecomputeFrom recalculates balances for entries[asOfIndex:], seeding from
// the balance preceding asOfIndex. The snapshot must be chronological;
// recomputing against an out-of-order slice returns ErrStaleRecompute since
// the later balances would be meaningless.
func RecomputeFrom(opening decimal.Decimal, entries []Entry, asOfIndex int) ([]Entry, error) {
	if asOfIndex < 0 || asOfIndex > len(entries) {
		return nil, shared.ErrStaleRecompute
	}
	if !Chronological(entries) {
		return nil, shared.ErrStaleRecompute
	}
	prev := opening
	if asOfIndex > 0 {
		prev = entries[asOfIndex-1].Balance
	}
	return Fold(prev, entries[asOfIndex:]), nil
}
