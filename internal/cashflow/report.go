// Package cashflow derives opening/closing cash and per-entry running
// balances from the cash account's transaction stream.
package cashflow

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/ledger"
	"github.com/bizledger/bizledger/internal/money"
)

// Entry is one row of the cash account stream. Cash marks the rows that move
// cash in hand; rows with Cash false (bank or cheque legs shown alongside)
// are informational and never count toward the cash sums.
type Entry struct {
	ID         int64            `json:"id"`
	DocumentID uuid.NullUUID    `json:"document_id,omitempty"`
	Type       ledger.EntryType `json:"type"`
	Date       time.Time        `json:"date"`
	Seq        int64            `json:"seq"`
	Debit      decimal.Decimal  `json:"debit"`
	Credit     decimal.Decimal  `json:"credit"`
	Cash       bool             `json:"cash"`
	Note       string           `json:"note,omitempty"`
}

// Row is a report entry with its running balance.
type Row struct {
	Entry
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Report is the cash-flow statement for a date range.
type Report struct {
	OpeningCash  decimal.Decimal `json:"opening_cash"`
	Rows         []Row           `json:"rows"`
	TotalCashIn  decimal.Decimal `json:"total_cash_in"`
	TotalCashOut decimal.Decimal `json:"total_cash_out"`
	ClosingCash  decimal.Decimal `json:"closing_cash"`
}

// BuildReport folds entries chronologically from the opening cash balance.
// Credits are cash in, debits cash out. Informational rows carry the prior
// running balance unchanged. Invariant: closingCash equals the last row's
// running balance and openingCash + totalCashIn - totalCashOut.
func BuildReport(openingCash decimal.Decimal, entries []Entry) Report {
	ordered := append([]Entry(nil), entries...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Seq < ordered[j].Seq
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	report := Report{
		OpeningCash:  openingCash,
		TotalCashIn:  money.Zero,
		TotalCashOut: money.Zero,
	}
	balance := openingCash
	for _, e := range ordered {
		if e.Cash {
			report.TotalCashIn = report.TotalCashIn.Add(e.Credit)
			report.TotalCashOut = report.TotalCashOut.Add(e.Debit)
			balance = balance.Add(e.Credit).Sub(e.Debit)
		}
		report.Rows = append(report.Rows, Row{Entry: e, RunningBalance: balance})
	}
	report.ClosingCash = balance
	return report
}
