// Package documents assembles line items, totals, payment allocations and
// ledger postings for sale, purchase and estimate style documents. It is the
// single computation path behind every add/edit screen.
package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/billing/calc"
	"github.com/bizledger/bizledger/internal/billing/payments"
	"github.com/bizledger/bizledger/internal/ledger"
)

// Kind enumerates document types.
type Kind string

const (
	KindSale            Kind = "SALE"
	KindPurchase        Kind = "PURCHASE"
	KindEstimate        Kind = "ESTIMATE"
	KindProforma        Kind = "PROFORMA"
	KindDeliveryChallan Kind = "DELIVERY_CHALLAN"
	KindCreditNote      Kind = "CREDIT_NOTE"
	KindDebitNote       Kind = "DEBIT_NOTE"
)

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	switch k {
	case KindSale, KindPurchase, KindEstimate, KindProforma,
		KindDeliveryChallan, KindCreditNote, KindDebitNote:
		return true
	}
	return false
}

// Posts reports whether documents of this kind post to the party ledger.
// Estimates, proformas and delivery challans are quotes or logistics papers
// and never move balances.
func (k Kind) Posts() bool {
	switch k {
	case KindSale, KindPurchase, KindCreditNote, KindDebitNote:
		return true
	}
	return false
}

// LedgerType maps a posting kind to its ledger entry type.
func (k Kind) LedgerType() ledger.EntryType {
	switch k {
	case KindSale:
		return ledger.EntrySale
	case KindPurchase:
		return ledger.EntryPurchase
	case KindCreditNote:
		return ledger.EntryCreditNote
	case KindDebitNote:
		return ledger.EntryDebitNote
	}
	return ""
}

// Inbound reports whether money received against this kind flows into the
// business (sale receipts) rather than out (purchase payments).
func (k Kind) Inbound() bool {
	switch k {
	case KindSale, KindDebitNote:
		return true
	}
	return false
}

func (k Kind) numberPrefix() string {
	switch k {
	case KindSale:
		return "INV"
	case KindPurchase:
		return "PUR"
	case KindEstimate:
		return "EST"
	case KindProforma:
		return "PRO"
	case KindDeliveryChallan:
		return "DC"
	case KindCreditNote:
		return "CN"
	case KindDebitNote:
		return "DN"
	}
	return "DOC"
}

// Line combines the editable fields of a row with its derived amounts.
type Line struct {
	calc.LineItem
	calc.LineAmounts
}

// Document is a saved, immutable billing document.
type Document struct {
	ID              uuid.UUID             `json:"id"`
	Number          string                `json:"number"`
	Kind            Kind                  `json:"kind"`
	PartyID         int64                 `json:"party_id"`
	Date            time.Time             `json:"date"`
	Lines           []Line                `json:"lines"`
	RoundOffEnabled bool                  `json:"round_off_enabled"`
	Totals          calc.DocumentTotals   `json:"totals"`
	Allocations     []payments.Allocation `json:"allocations,omitempty"`
	Note            string                `json:"note,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// Preview is the recomputed state of an open form: derived rows, totals and
// the payment summary, with nothing persisted.
type Preview struct {
	Lines   []Line              `json:"lines"`
	Totals  calc.DocumentTotals `json:"totals"`
	Payment payments.Summary    `json:"payment"`
}

// CreateDocumentInput carries a document save request into the service.
type CreateDocumentInput struct {
	Kind            Kind
	PartyID         int64
	Date            time.Time
	Lines           []calc.LineItem
	RoundOffEnabled bool
	RoundOffValue   *decimal.Decimal
	Allocations     []payments.Allocation
	Note            string
}

// PaymentDirection distinguishes payment-in from payment-out vouchers.
type PaymentDirection string

const (
	PaymentIn  PaymentDirection = "IN"
	PaymentOut PaymentDirection = "OUT"
)

// CreatePaymentInput carries a standalone payment voucher request.
type CreatePaymentInput struct {
	PartyID     int64
	Direction   PaymentDirection
	Date        time.Time
	Amount      decimal.Decimal
	Allocations []payments.Allocation
	Note        string
}

// ListDocumentsRequest filters the document list.
type ListDocumentsRequest struct {
	Kind    Kind
	PartyID int64
	Limit   int
	Offset  int
}
