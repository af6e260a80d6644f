package documents

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/billing/calc"
	"github.com/bizledger/bizledger/internal/billing/payments"
	"github.com/bizledger/bizledger/internal/cashflow"
	"github.com/bizledger/bizledger/internal/ledger"
	"github.com/bizledger/bizledger/internal/shared"
)

// Repository defines document persistence. RunInTx scopes a save and its
// postings to one transaction; statements issued through the callback context
// join it.
type Repository interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
	Create(ctx context.Context, doc Document) (Document, error)
	Get(ctx context.Context, id uuid.UUID) (Document, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]Document, error)
	GenerateNumber(ctx context.Context, kind Kind) (string, error)
}

// LedgerPort appends party ledger entries.
type LedgerPort interface {
	Append(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
}

// CashPort records cash account rows.
type CashPort interface {
	Record(ctx context.Context, e cashflow.Entry) (cashflow.Entry, error)
}

// Service turns form submissions into computed, posted documents.
type Service struct {
	repo   Repository
	ledger LedgerPort
	cash   CashPort
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, ledgerPort LedgerPort, cashPort CashPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, ledger: ledgerPort, cash: cashPort, logger: logger}
}

func (s *Service) compute(input CreateDocumentInput) (Preview, error) {
	if !input.Kind.Valid() {
		return Preview{}, shared.NewInvalidInput("kind", "unknown document kind")
	}
	if len(input.Lines) == 0 {
		return Preview{}, shared.NewInvalidInput("lines", "at least one line is required")
	}

	lines := make([]Line, 0, len(input.Lines))
	for _, item := range input.Lines {
		amounts, err := calc.ComputeLine(item)
		if err != nil {
			return Preview{}, err
		}
		lines = append(lines, Line{LineItem: item, LineAmounts: amounts})
	}

	totals, err := calc.ComputeTotals(input.Lines, input.RoundOffEnabled)
	if err != nil {
		return Preview{}, err
	}
	if input.RoundOffValue != nil {
		if !input.RoundOffEnabled {
			return Preview{}, shared.NewInvalidInput("round_off_value", "round-off is not enabled")
		}
		if err := calc.ValidateRoundOff(totals.RawTotal, *input.RoundOffValue); err != nil {
			return Preview{}, err
		}
	}

	summary, err := payments.Allocate(totals.Total, input.Allocations)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Lines: lines, Totals: totals, Payment: summary}, nil
}

// Preview recomputes a document form without saving. Pure apart from input
// validation; open forms call this on every edit.
func (s *Service) Preview(input CreateDocumentInput) (Preview, error) {
	return s.compute(input)
}

// Create computes, persists and posts a document. Overpayment does not block
// the save; the returned summary carries the flag for the form to surface.
func (s *Service) Create(ctx context.Context, input CreateDocumentInput) (Document, payments.Summary, error) {
	if input.PartyID == 0 {
		return Document{}, payments.Summary{}, shared.NewInvalidInput("party_id", "required")
	}
	if input.Date.IsZero() {
		return Document{}, payments.Summary{}, shared.NewInvalidInput("date", "required")
	}

	preview, err := s.compute(input)
	if err != nil {
		return Document{}, payments.Summary{}, err
	}

	// Numbering, the document rows and the ledger/cash postings commit
	// together; a failed posting leaves no half-saved document behind.
	var stored Document
	err = s.repo.RunInTx(ctx, func(ctx context.Context) error {
		number, err := s.repo.GenerateNumber(ctx, input.Kind)
		if err != nil {
			return err
		}

		doc := Document{
			ID:              uuid.New(),
			Number:          number,
			Kind:            input.Kind,
			PartyID:         input.PartyID,
			Date:            input.Date,
			Lines:           preview.Lines,
			RoundOffEnabled: input.RoundOffEnabled,
			Totals:          preview.Totals,
			Allocations:     input.Allocations,
			Note:            input.Note,
		}
		stored, err = s.repo.Create(ctx, doc)
		if err != nil {
			return err
		}
		return s.post(ctx, stored, preview.Payment)
	})
	if err != nil {
		return Document{}, payments.Summary{}, err
	}

	s.logger.Info("document saved",
		slog.String("number", stored.Number),
		slog.String("kind", string(stored.Kind)),
		slog.String("total", stored.Totals.Total.String()))
	return stored, preview.Payment, nil
}

// post appends the saved document to the party's stream and records its cash
// legs. Estimate-style kinds skip both.
func (s *Service) post(ctx context.Context, doc Document, summary payments.Summary) error {
	if !doc.Kind.Posts() {
		return nil
	}

	docRef := uuid.NullUUID{UUID: doc.ID, Valid: true}
	entry, err := ledger.NewEntry(doc.PartyID, docRef, doc.Kind.LedgerType(), doc.Date, doc.Totals.Total)
	if err != nil {
		return err
	}
	entry.Note = doc.Number
	if _, err := s.ledger.Append(ctx, entry); err != nil {
		return err
	}

	if summary.TotalAllocated.IsZero() {
		return nil
	}

	settleType := ledger.EntryPaymentIn
	if !doc.Kind.Inbound() {
		settleType = ledger.EntryPaymentOut
	}
	settle, err := ledger.NewEntry(doc.PartyID, docRef, settleType, doc.Date, summary.TotalAllocated)
	if err != nil {
		return err
	}
	settle.Note = doc.Number
	if _, err := s.ledger.Append(ctx, settle); err != nil {
		return err
	}

	return s.recordCashLegs(ctx, docRef, settleType, doc.Date, doc.Number, doc.Allocations, doc.Kind.Inbound())
}

// recordCashLegs writes one cash account row per allocation. Non-cash
// instruments appear informationally and stay out of the cash sums.
func (s *Service) recordCashLegs(ctx context.Context, docRef uuid.NullUUID, t ledger.EntryType, date time.Time, note string, allocations []payments.Allocation, inbound bool) error {
	for _, alloc := range allocations {
		if alloc.Amount.IsZero() {
			continue
		}
		row := cashflow.Entry{
			DocumentID: docRef,
			Type:       t,
			Date:       date,
			Cash:       alloc.Method == payments.MethodCash,
			Note:       note,
		}
		if inbound {
			row.Credit = alloc.Amount
			row.Debit = decimal.Zero
		} else {
			row.Debit = alloc.Amount
			row.Credit = decimal.Zero
		}
		if _, err := s.cash.Record(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// CreatePayment records a standalone payment-in/payment-out voucher. The
// allocation split must settle the voucher amount exactly.
func (s *Service) CreatePayment(ctx context.Context, input CreatePaymentInput) (payments.Summary, error) {
	if input.PartyID == 0 {
		return payments.Summary{}, shared.NewInvalidInput("party_id", "required")
	}
	if input.Direction != PaymentIn && input.Direction != PaymentOut {
		return payments.Summary{}, shared.NewInvalidInput("direction", "must be IN or OUT")
	}
	if input.Amount.Sign() <= 0 {
		return payments.Summary{}, shared.NewInvalidInput("amount", "must be positive")
	}

	summary, err := payments.RequireSettled(input.Amount, input.Allocations)
	if err != nil {
		return payments.Summary{}, err
	}

	entryType := ledger.EntryPaymentIn
	if input.Direction == PaymentOut {
		entryType = ledger.EntryPaymentOut
	}
	entry, err := ledger.NewEntry(input.PartyID, uuid.NullUUID{}, entryType, input.Date, input.Amount)
	if err != nil {
		return payments.Summary{}, err
	}
	entry.Note = input.Note
	err = s.repo.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.Append(ctx, entry); err != nil {
			return err
		}
		return s.recordCashLegs(ctx, uuid.NullUUID{}, entryType, input.Date, input.Note,
			input.Allocations, input.Direction == PaymentIn)
	})
	if err != nil {
		return payments.Summary{}, err
	}
	return summary, nil
}

// Get returns a saved document.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	return s.repo.Get(ctx, id)
}

// List returns saved documents matching the filters.
func (s *Service) List(ctx context.Context, req ListDocumentsRequest) ([]Document, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}
	return s.repo.List(ctx, req)
}
