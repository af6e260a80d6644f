// Package ledger maintains running balances over the ordered transaction
// stream of a party. The sign convention is fixed once: balance moves by
// credit minus debit, so entries that raise the receivable post on the
// credit side.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/shared"
)

// EntryType enumerates ledger transaction types.
type EntryType string

const (
	EntrySale           EntryType = "SALE"
	EntryPurchase       EntryType = "PURCHASE"
	EntryPaymentIn      EntryType = "PAYMENT_IN"
	EntryPaymentOut     EntryType = "PAYMENT_OUT"
	EntryCreditNote     EntryType = "CREDIT_NOTE"
	EntryDebitNote      EntryType = "DEBIT_NOTE"
	EntryCashAdjustment EntryType = "CASH_ADJUSTMENT"
)

// Valid reports whether the type is known.
func (t EntryType) Valid() bool {
	switch t {
	case EntrySale, EntryPurchase, EntryPaymentIn, EntryPaymentOut,
		EntryCreditNote, EntryDebitNote, EntryCashAdjustment:
		return true
	}
	return false
}

// CreditSide reports which column a positive amount of this type posts to.
// Sale and CreditNote raise the party balance; Purchase, PaymentIn and
// DebitNote lower it; PaymentOut restores it.
func (t EntryType) CreditSide() bool {
	switch t {
	case EntrySale, EntryCreditNote, EntryPaymentOut:
		return true
	}
	return false
}

// Entry is one immutable fact in a party's transaction stream. Seq breaks
// ties between entries sharing a date, in insertion order.
type Entry struct {
	ID         int64           `json:"id"`
	PartyID    int64           `json:"party_id"`
	DocumentID uuid.NullUUID   `json:"document_id,omitempty"`
	Type       EntryType       `json:"type"`
	Date       time.Time       `json:"date"`
	Seq        int64           `json:"seq"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Balance    decimal.Decimal `json:"balance"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewEntry places amount on the conventional side for the type. A negative
// amount is only meaningful for cash adjustments, where it flips the side
// (a manual cash decrease).
func NewEntry(partyID int64, documentID uuid.NullUUID, t EntryType, date time.Time, amount decimal.Decimal) (Entry, error) {
	if !t.Valid() {
		return Entry{}, shared.NewInvalidInput("type", "unknown entry type")
	}
	if money.IsNegative(amount) && t != EntryCashAdjustment {
		return Entry{}, shared.NewInvalidInput("amount", "must not be negative")
	}

	e := Entry{
		PartyID:    partyID,
		DocumentID: documentID,
		Type:       t,
		Date:       date,
		Debit:      money.Zero,
		Credit:     money.Zero,
	}
	creditSide := t.CreditSide()
	if t == EntryCashAdjustment {
		creditSide = amount.Sign() >= 0
	}
	if creditSide {
		e.Credit = amount.Abs()
	} else {
		e.Debit = amount.Abs()
	}
	return e, nil
}
