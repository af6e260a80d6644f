package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizledger/bizledger/internal/platform/db"
	"github.com/bizledger/bizledger/internal/shared"
)

// PG is the PostgreSQL backed Repository.
type PG struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

const entryColumns = `id, party_id, document_id, type, entry_date, seq, debit, credit, balance, note, created_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.PartyID, &e.DocumentID, &e.Type, &e.Date, &e.Seq,
		&e.Debit, &e.Credit, &e.Balance, &e.Note, &e.CreatedAt)
	return e, err
}

// WithPartyLock runs fn inside a transaction holding an advisory lock on the
// party. Two concurrent appends to one stream would otherwise both read the
// same latest balance and each write prev + delta.
func (r *PG) WithPartyLock(ctx context.Context, partyID int64, fn func(context.Context) error) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := db.From(ctx, r.pool).Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, partyID); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// LoadEntries returns the full stream for a party, ordered by date then
// insertion sequence.
func (r *PG) LoadEntries(ctx context.Context, partyID int64) ([]Entry, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE party_id = $1
		ORDER BY entry_date, seq`, partyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LatestEntry returns the chronologically last entry, or nil for an empty
// stream.
func (r *PG) LatestEntry(ctx context.Context, partyID int64) (*Entry, error) {
	row := db.From(ctx, r.pool).QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE party_id = $1
		ORDER BY entry_date DESC, seq DESC
		LIMIT 1`, partyID)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// AppendEntry inserts an entry, assigning ID and insertion sequence.
func (r *PG) AppendEntry(ctx context.Context, e Entry) (Entry, error) {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO ledger_entries (party_id, document_id, type, entry_date, seq, debit, credit, balance, note, created_at)
		VALUES ($1, $2, $3, $4, nextval('ledger_entries_seq'), $5, $6, $7, $8, NOW())
		RETURNING id, seq, created_at`,
		e.PartyID, e.DocumentID, e.Type, e.Date, e.Debit, e.Credit, e.Balance, e.Note,
	).Scan(&e.ID, &e.Seq, &e.CreatedAt)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// UpdateBalances rewrites stored running balances after a recompute. Callers
// hold the party lock, so the rewrites land in that transaction.
func (r *PG) UpdateBalances(ctx context.Context, entries []Entry) error {
	q := db.From(ctx, r.pool)
	for _, e := range entries {
		tag, err := q.Exec(ctx, `UPDATE ledger_entries SET balance = $1 WHERE id = $2`, e.Balance, e.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrStaleRecompute
		}
	}
	return nil
}

// DeleteEntry removes an entry and returns the removed row.
func (r *PG) DeleteEntry(ctx context.Context, id int64) (*Entry, error) {
	row := db.From(ctx, r.pool).QueryRow(ctx, `
		DELETE FROM ledger_entries WHERE id = $1
		RETURNING `+entryColumns, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
