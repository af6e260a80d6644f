package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bizledger/bizledger/internal/shared"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func entry(t EntryType, date time.Time, seq int64, amount string) Entry {
	e, err := NewEntry(1, uuid.NullUUID{}, t, date, d(amount))
	if err != nil {
		panic(err)
	}
	e.Seq = seq
	return e
}

func TestNewEntrySides(t *testing.T) {
	sale := entry(EntrySale, day(1), 1, "500")
	require.True(t, sale.Credit.Equal(d("500")))
	require.True(t, sale.Debit.IsZero())

	payIn := entry(EntryPaymentIn, day(1), 2, "200")
	require.True(t, payIn.Debit.Equal(d("200")))
	require.True(t, payIn.Credit.IsZero())

	decrease := entry(EntryCashAdjustment, day(1), 3, "-50")
	require.True(t, decrease.Debit.Equal(d("50")))

	increase := entry(EntryCashAdjustment, day(1), 4, "50")
	require.True(t, increase.Credit.Equal(d("50")))
}

func TestNewEntryRejectsNegativeAmount(t *testing.T) {
	_, err := NewEntry(1, uuid.NullUUID{}, EntrySale, day(1), d("-10"))
	require.Error(t, err)
	require.True(t, shared.IsInvalidInput(err))
}

func TestApplySignConvention(t *testing.T) {
	balance := d("0")
	balance = Apply(balance, entry(EntrySale, day(1), 1, "1000"))
	require.True(t, balance.Equal(d("1000")), "sale raises the receivable")
	balance = Apply(balance, entry(EntryPaymentIn, day(2), 2, "600"))
	require.True(t, balance.Equal(d("400")), "payment in lowers it")
	balance = Apply(balance, entry(EntryCreditNote, day(3), 3, "100"))
	require.True(t, balance.Equal(d("500")))
	balance = Apply(balance, entry(EntryDebitNote, day(4), 4, "500"))
	require.True(t, balance.IsZero())
}

func TestFoldSetsRunningBalances(t *testing.T) {
	entries := []Entry{
		entry(EntrySale, day(1), 1, "400"),
		entry(EntryPaymentIn, day(2), 2, "150"),
		entry(EntrySale, day(2), 3, "250"),
	}
	folded := Fold(d("100"), entries)
	require.Len(t, folded, 3)
	require.True(t, folded[0].Balance.Equal(d("500")))
	require.True(t, folded[1].Balance.Equal(d("350")))
	require.True(t, folded[2].Balance.Equal(d("600")))
	// input untouched
	require.True(t, entries[0].Balance.IsZero())
}

func TestRecomputeFromZeroEqualsFullFold(t *testing.T) {
	entries := []Entry{
		entry(EntrySale, day(1), 1, "400"),
		entry(EntryPaymentIn, day(3), 2, "100"),
		entry(EntrySale, day(5), 3, "700"),
	}
	full := Fold(d("0"), entries)
	fromZero, err := RecomputeFrom(d("0"), entries, 0)
	require.NoError(t, err)
	require.Equal(t, full, fromZero)
}

func TestRecomputeFromMidStream(t *testing.T) {
	entries := Fold(d("0"), []Entry{
		entry(EntrySale, day(1), 1, "400"),
		entry(EntrySale, day(2), 2, "100"),
		entry(EntryPaymentIn, day(3), 3, "300"),
	})
	tail, err := RecomputeFrom(d("0"), entries, 1)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	require.True(t, tail[0].Balance.Equal(d("500")))
	require.True(t, tail[1].Balance.Equal(d("200")))
}

func TestRecomputeFromStaleSnapshot(t *testing.T) {
	outOfOrder := []Entry{
		entry(EntrySale, day(5), 1, "400"),
		entry(EntrySale, day(1), 2, "100"),
	}
	_, err := RecomputeFrom(d("0"), outOfOrder, 0)
	require.ErrorIs(t, err, shared.ErrStaleRecompute)

	_, err = RecomputeFrom(d("0"), outOfOrder[:1], 5)
	require.ErrorIs(t, err, shared.ErrStaleRecompute)

	_, err = RecomputeFrom(d("0"), outOfOrder[:1], -1)
	require.ErrorIs(t, err, shared.ErrStaleRecompute)
}

func TestChronologicalTieBreakBySeq(t *testing.T) {
	sameDay := []Entry{
		entry(EntrySale, day(1), 1, "100"),
		entry(EntrySale, day(1), 2, "100"),
	}
	require.True(t, Chronological(sameDay))

	swapped := []Entry{sameDay[1], sameDay[0]}
	require.False(t, Chronological(swapped))
}
