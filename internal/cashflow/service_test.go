package cashflow

import (
	"context"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bizledger/bizledger/internal/ledger"
	"github.com/bizledger/bizledger/internal/shared"
)

type memoryCashRepo struct {
	entries []Entry
	nextID  int64
	loads   int
}

func (r *memoryCashRepo) LoadEntries(ctx context.Context, from, to time.Time) ([]Entry, error) {
	r.loads++
	var out []Entry
	for _, e := range r.entries {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memoryCashRepo) NetBefore(ctx context.Context, cutoff time.Time) (decimal.Decimal, error) {
	net := decimal.Zero
	for _, e := range r.entries {
		if e.Cash && e.Date.Before(cutoff) {
			net = net.Add(e.Credit).Sub(e.Debit)
		}
	}
	return net, nil
}

func (r *memoryCashRepo) AppendEntry(ctx context.Context, e Entry) (Entry, error) {
	r.nextID++
	e.ID = r.nextID
	e.Seq = r.nextID
	r.entries = append(r.entries, e)
	return e, nil
}

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestReportOpeningIncludesPriorMovements(t *testing.T) {
	ctx := context.Background()
	repo := &memoryCashRepo{}
	svc := NewService(repo, nil, d("100"), slog.New(slog.DiscardHandler))

	_, err := svc.Record(ctx, cashIn(ledger.EntrySale, day(1), 0, "400"))
	require.NoError(t, err)
	_, err = svc.Record(ctx, cashIn(ledger.EntryPaymentIn, day(10), 0, "700"))
	require.NoError(t, err)

	report, err := svc.Report(ctx, day(5), day(15))
	require.NoError(t, err)
	require.True(t, report.OpeningCash.Equal(d("500")), "configured opening plus prior cash in")
	require.Len(t, report.Rows, 1)
	require.True(t, report.ClosingCash.Equal(d("1200")))
}

func TestReportRejectsInvertedRange(t *testing.T) {
	svc := NewService(&memoryCashRepo{}, nil, decimal.Zero, slog.New(slog.DiscardHandler))
	_, err := svc.Report(context.Background(), day(10), day(1))
	require.True(t, shared.IsInvalidInput(err))
}

func TestReportCachedUntilRecord(t *testing.T) {
	ctx := context.Background()
	repo := &memoryCashRepo{}
	svc := NewService(repo, newTestCache(t), decimal.Zero, slog.New(slog.DiscardHandler))

	_, err := svc.Record(ctx, cashIn(ledger.EntrySale, day(2), 0, "400"))
	require.NoError(t, err)

	first, err := svc.Report(ctx, day(1), day(28))
	require.NoError(t, err)
	loadsAfterFirst := repo.loads

	second, err := svc.Report(ctx, day(1), day(28))
	require.NoError(t, err)
	require.Equal(t, loadsAfterFirst, repo.loads, "second report served from cache")
	require.True(t, second.ClosingCash.Equal(first.ClosingCash))

	// a new cash movement invalidates the cached report
	_, err = svc.Record(ctx, cashOut(ledger.EntryCashAdjustment, day(3), 0, "150"))
	require.NoError(t, err)

	third, err := svc.Report(ctx, day(1), day(28))
	require.NoError(t, err)
	require.Greater(t, repo.loads, loadsAfterFirst)
	require.True(t, third.ClosingCash.Equal(d("250")))
}

func TestRecordRejectsInvalidEntry(t *testing.T) {
	svc := NewService(&memoryCashRepo{}, nil, decimal.Zero, slog.New(slog.DiscardHandler))
	_, err := svc.Record(context.Background(), Entry{Type: "BOGUS", Date: day(1), Credit: d("10")})
	require.True(t, shared.IsInvalidInput(err))
}
