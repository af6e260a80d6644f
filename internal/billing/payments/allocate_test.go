package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bizledger/bizledger/internal/shared"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocateOverpayment(t *testing.T) {
	summary, err := Allocate(d("1000"), []Allocation{
		{Method: MethodCash, Amount: d("700")},
		{Method: MethodBank, Amount: d("500")},
	})
	require.NoError(t, err)
	require.True(t, summary.TotalAllocated.Equal(d("1200")))
	require.True(t, summary.Remaining.Equal(d("-200")))
	require.True(t, summary.Overpaid)
	require.False(t, summary.FullyPaid)
}

func TestAllocateExactSettlement(t *testing.T) {
	summary, err := Allocate(d("319.20"), []Allocation{
		{Method: MethodUPI, Amount: d("319.20"), ReferenceNo: "UPI-8841"},
	})
	require.NoError(t, err)
	require.True(t, summary.FullyPaid)
	require.False(t, summary.Overpaid)
	require.True(t, summary.Remaining.IsZero())
}

func TestAllocatePartial(t *testing.T) {
	summary, err := Allocate(d("1000"), []Allocation{
		{Method: MethodCheque, Amount: d("400"), ReferenceNo: "CHQ-10"},
	})
	require.NoError(t, err)
	require.True(t, summary.Remaining.Equal(d("600")))
	require.False(t, summary.FullyPaid)
	require.False(t, summary.Overpaid)
}

func TestAllocateSameMethodAccumulates(t *testing.T) {
	summary, err := Allocate(d("900"), []Allocation{
		{Method: MethodCash, Amount: d("400")},
		{Method: MethodCash, Amount: d("500")},
	})
	require.NoError(t, err)
	require.True(t, summary.ByMethod[MethodCash].Equal(d("900")))
	require.True(t, summary.FullyPaid)
}

func TestAllocateRejectsNegativeAmount(t *testing.T) {
	_, err := Allocate(d("100"), []Allocation{{Method: MethodCash, Amount: d("-1")}})
	require.Error(t, err)
	require.True(t, shared.IsInvalidInput(err))
}

func TestAllocateRejectsUnknownMethod(t *testing.T) {
	_, err := Allocate(d("100"), []Allocation{{Method: "BARTER", Amount: d("100")}})
	require.Error(t, err)
	require.True(t, shared.IsInvalidInput(err))
}

func TestAllocateNoEpsilon(t *testing.T) {
	// A one-paisa shortfall is not fully paid.
	summary, err := Allocate(d("100.00"), []Allocation{{Method: MethodCash, Amount: d("99.99")}})
	require.NoError(t, err)
	require.False(t, summary.FullyPaid)
	require.True(t, summary.Remaining.Equal(d("0.01")))
}

func TestRequireSettled(t *testing.T) {
	_, err := RequireSettled(d("100"), []Allocation{{Method: MethodCash, Amount: d("60")}})
	require.ErrorIs(t, err, shared.ErrInconsistentAllocation)

	summary, err := RequireSettled(d("100"), []Allocation{
		{Method: MethodCash, Amount: d("60")},
		{Method: MethodBank, Amount: d("40")},
	})
	require.NoError(t, err)
	require.True(t, summary.FullyPaid)
}
