package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bizledger/bizledger/internal/billing/calc"
	"github.com/bizledger/bizledger/internal/billing/payments"
	"github.com/bizledger/bizledger/internal/cashflow"
	"github.com/bizledger/bizledger/internal/ledger"
	"github.com/bizledger/bizledger/internal/shared"
)

type memoryDocRepo struct {
	docs    map[uuid.UUID]Document
	numbers map[Kind]int64
}

func newMemoryDocRepo() *memoryDocRepo {
	return &memoryDocRepo{docs: make(map[uuid.UUID]Document), numbers: make(map[Kind]int64)}
}

// RunInTx snapshots state and restores it when fn fails, mirroring a
// rolled-back transaction.
func (r *memoryDocRepo) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	docs := make(map[uuid.UUID]Document, len(r.docs))
	for id, doc := range r.docs {
		docs[id] = doc
	}
	numbers := make(map[Kind]int64, len(r.numbers))
	for kind, n := range r.numbers {
		numbers[kind] = n
	}
	if err := fn(ctx); err != nil {
		r.docs = docs
		r.numbers = numbers
		return err
	}
	return nil
}

func (r *memoryDocRepo) Create(ctx context.Context, doc Document) (Document, error) {
	doc.CreatedAt = time.Now()
	r.docs[doc.ID] = doc
	return doc, nil
}

func (r *memoryDocRepo) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	return doc, nil
}

func (r *memoryDocRepo) List(ctx context.Context, req ListDocumentsRequest) ([]Document, error) {
	var out []Document
	for _, doc := range r.docs {
		if req.Kind != "" && doc.Kind != req.Kind {
			continue
		}
		if req.PartyID != 0 && doc.PartyID != req.PartyID {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r *memoryDocRepo) GenerateNumber(ctx context.Context, kind Kind) (string, error) {
	r.numbers[kind]++
	return fmt.Sprintf("%s-%06d", kind.numberPrefix(), r.numbers[kind]), nil
}

type recordingLedger struct {
	entries []ledger.Entry
	fail    error
}

func (l *recordingLedger) Append(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	if l.fail != nil {
		return ledger.Entry{}, l.fail
	}
	e.ID = int64(len(l.entries) + 1)
	l.entries = append(l.entries, e)
	return e, nil
}

type recordingCash struct {
	rows []cashflow.Entry
}

func (c *recordingCash) Record(ctx context.Context, e cashflow.Entry) (cashflow.Entry, error) {
	e.ID = int64(len(c.rows) + 1)
	c.rows = append(c.rows, e)
	return e, nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestService() (*Service, *memoryDocRepo, *recordingLedger, *recordingCash) {
	repo := newMemoryDocRepo()
	lp := &recordingLedger{}
	cp := &recordingCash{}
	return NewService(repo, lp, cp, slog.New(slog.DiscardHandler)), repo, lp, cp
}

func saleInput() CreateDocumentInput {
	return CreateDocumentInput{
		Kind:    KindSale,
		PartyID: 1,
		Date:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []calc.LineItem{
			{Description: "Widget", Quantity: d("2"), UnitPrice: d("500"),
				DiscountPercent: d("10"), TaxPercent: d("18")},
		},
	}
}

func TestCreateSalePostsLedgerAndCash(t *testing.T) {
	svc, repo, lp, cp := newTestService()

	input := saleInput()
	input.Allocations = []payments.Allocation{
		{Method: payments.MethodCash, Amount: d("1000")},
		{Method: payments.MethodUPI, Amount: d("62")},
	}

	doc, summary, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "INV-000001", doc.Number)
	require.True(t, doc.Totals.Total.Equal(d("1062.00")))
	require.True(t, summary.FullyPaid)
	require.False(t, summary.Overpaid)
	require.Len(t, repo.docs, 1)

	require.Len(t, lp.entries, 2)
	sale := lp.entries[0]
	require.Equal(t, ledger.EntrySale, sale.Type)
	require.True(t, sale.Credit.Equal(d("1062.00")))
	require.True(t, sale.Debit.IsZero())
	require.Equal(t, doc.Number, sale.Note)
	require.Equal(t, doc.ID, sale.DocumentID.UUID)

	settle := lp.entries[1]
	require.Equal(t, ledger.EntryPaymentIn, settle.Type)
	require.True(t, settle.Debit.Equal(d("1062")))

	require.Len(t, cp.rows, 2)
	require.True(t, cp.rows[0].Cash)
	require.True(t, cp.rows[0].Credit.Equal(d("1000")))
	require.False(t, cp.rows[1].Cash)
	require.True(t, cp.rows[1].Credit.Equal(d("62")))
}

func TestCreateRollsBackWhenPostingFails(t *testing.T) {
	svc, repo, lp, cp := newTestService()
	lp.fail = errors.New("ledger unavailable")

	_, _, err := svc.Create(context.Background(), saleInput())
	require.ErrorIs(t, err, lp.fail)

	require.Empty(t, repo.docs)
	require.Empty(t, cp.rows)

	// The failed attempt must not consume a number either.
	lp.fail = nil
	doc, _, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	require.Equal(t, "INV-000001", doc.Number)
}

func TestNumbersCountPerKind(t *testing.T) {
	svc, _, _, _ := newTestService()

	sale, _, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	require.Equal(t, "INV-000001", sale.Number)

	input := saleInput()
	input.Kind = KindEstimate
	estimate, _, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "EST-000001", estimate.Number)

	second, _, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)
	require.Equal(t, "INV-000002", second.Number)
}

func TestCreateEstimateDoesNotPost(t *testing.T) {
	svc, repo, lp, cp := newTestService()

	input := saleInput()
	input.Kind = KindEstimate

	doc, _, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "EST-000001", doc.Number)
	require.Len(t, repo.docs, 1)
	require.Empty(t, lp.entries)
	require.Empty(t, cp.rows)
}

func TestCreatePurchasePostsDebitSide(t *testing.T) {
	svc, _, lp, cp := newTestService()

	input := saleInput()
	input.Kind = KindPurchase
	input.Allocations = []payments.Allocation{{Method: payments.MethodBank, Amount: d("1062")}}

	_, _, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, lp.entries, 2)
	require.Equal(t, ledger.EntryPurchase, lp.entries[0].Type)
	require.True(t, lp.entries[0].Debit.Equal(d("1062.00")))
	require.Equal(t, ledger.EntryPaymentOut, lp.entries[1].Type)

	require.Len(t, cp.rows, 1)
	require.True(t, cp.rows[0].Debit.Equal(d("1062")))
	require.False(t, cp.rows[0].Cash)
}

func TestCreateOverpaymentSavesWithFlag(t *testing.T) {
	svc, _, lp, _ := newTestService()

	input := saleInput()
	input.Allocations = []payments.Allocation{
		{Method: payments.MethodCash, Amount: d("700")},
		{Method: payments.MethodCard, Amount: d("500")},
	}

	_, summary, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.True(t, summary.Overpaid)
	require.True(t, summary.Remaining.Equal(d("-138.00")))
	require.Len(t, lp.entries, 2)
	require.True(t, lp.entries[1].Debit.Equal(d("1200")))
}

func TestCreateRejectsRoundOffOverrideWhenDisabled(t *testing.T) {
	svc, _, _, _ := newTestService()

	input := saleInput()
	roundOff := d("-0.20")
	input.RoundOffValue = &roundOff

	_, _, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	require.True(t, shared.IsInvalidInput(err))
}

func TestCreateRequiresPartyAndDate(t *testing.T) {
	svc, _, _, _ := newTestService()

	input := saleInput()
	input.PartyID = 0
	_, _, err := svc.Create(context.Background(), input)
	require.True(t, shared.IsInvalidInput(err))

	input = saleInput()
	input.Date = time.Time{}
	_, _, err = svc.Create(context.Background(), input)
	require.True(t, shared.IsInvalidInput(err))
}

func TestPreviewDoesNotPersist(t *testing.T) {
	svc, repo, lp, cp := newTestService()

	preview, err := svc.Preview(saleInput())
	require.NoError(t, err)
	require.True(t, preview.Totals.Total.Equal(d("1062.00")))
	require.Len(t, preview.Lines, 1)
	require.True(t, preview.Lines[0].TaxAmount.Equal(d("162.00")))
	require.Empty(t, repo.docs)
	require.Empty(t, lp.entries)
	require.Empty(t, cp.rows)
}

func TestCreatePaymentSettlesExactly(t *testing.T) {
	svc, _, lp, cp := newTestService()

	input := CreatePaymentInput{
		PartyID:   7,
		Direction: PaymentIn,
		Date:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Amount:    d("1000"),
		Allocations: []payments.Allocation{
			{Method: payments.MethodCash, Amount: d("400")},
			{Method: payments.MethodCheque, Amount: d("600"), ReferenceNo: "CHQ-18"},
		},
	}

	summary, err := svc.CreatePayment(context.Background(), input)
	require.NoError(t, err)
	require.True(t, summary.FullyPaid)

	require.Len(t, lp.entries, 1)
	require.Equal(t, ledger.EntryPaymentIn, lp.entries[0].Type)
	require.True(t, lp.entries[0].Debit.Equal(d("1000")))

	require.Len(t, cp.rows, 2)
	require.True(t, cp.rows[0].Cash)
	require.False(t, cp.rows[1].Cash)
}

func TestCreatePaymentRejectsUnsettledSplit(t *testing.T) {
	svc, _, lp, _ := newTestService()

	input := CreatePaymentInput{
		PartyID:   7,
		Direction: PaymentOut,
		Date:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Amount:    d("1000"),
		Allocations: []payments.Allocation{
			{Method: payments.MethodBank, Amount: d("900")},
		},
	}

	_, err := svc.CreatePayment(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrInconsistentAllocation)
	require.Empty(t, lp.entries)
}

func TestListAppliesDefaultLimit(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, _, err := svc.Create(context.Background(), saleInput())
	require.NoError(t, err)

	docs, err := svc.List(context.Background(), ListDocumentsRequest{Kind: KindSale})
	require.NoError(t, err)
	require.Len(t, docs, 1)
}
