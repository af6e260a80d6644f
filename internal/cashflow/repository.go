package cashflow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/platform/db"
)

// PG is the PostgreSQL backed Repository.
type PG struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

const cashColumns = `id, document_id, type, entry_date, seq, debit, credit, is_cash, note`

func scanCashEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.DocumentID, &e.Type, &e.Date, &e.Seq,
		&e.Debit, &e.Credit, &e.Cash, &e.Note)
	return e, err
}

// LoadEntries returns cash account rows within the date range, ordered by
// date then insertion sequence.
func (r *PG) LoadEntries(ctx context.Context, from, to time.Time) ([]Entry, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT `+cashColumns+`
		FROM cash_entries
		WHERE entry_date >= $1 AND entry_date <= $2
		ORDER BY entry_date, seq`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanCashEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// NetBefore sums credit-debit over cash rows dated before the cutoff.
func (r *PG) NetBefore(ctx context.Context, cutoff time.Time) (decimal.Decimal, error) {
	var net decimal.Decimal
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		SELECT COALESCE(SUM(credit - debit), 0)
		FROM cash_entries
		WHERE is_cash AND entry_date < $1`, cutoff).Scan(&net)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return net, nil
}

// AppendEntry inserts a cash account row, assigning ID and sequence.
func (r *PG) AppendEntry(ctx context.Context, e Entry) (Entry, error) {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO cash_entries (document_id, type, entry_date, seq, debit, credit, is_cash, note)
		VALUES ($1, $2, $3, nextval('cash_entries_seq'), $4, $5, $6, $7)
		RETURNING id, seq`,
		e.DocumentID, e.Type, e.Date, e.Debit, e.Credit, e.Cash, e.Note,
	).Scan(&e.ID, &e.Seq)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}
