package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizledger/bizledger/internal/billing/payments"
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

// RunInTx runs fn inside one transaction. Every repository statement issued
// through the returned context joins it, including statements from other
// repositories sharing the pool.
func (r *PG) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return db.RunInTx(ctx, r.pool, fn)
}

// Create persists a document with its lines and allocations in one
// transaction.
func (r *PG) Create(ctx context.Context, doc Document) (Document, error) {
	err := db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		q := db.From(ctx, r.pool)
		err := q.QueryRow(ctx, `
			INSERT INTO documents (id, number, kind, party_id, doc_date, round_off_enabled,
				subtotal, total_discount, total_tax, total_qty, raw_total, round_off_value, total,
				note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
			RETURNING created_at`,
			doc.ID, doc.Number, doc.Kind, doc.PartyID, doc.Date, doc.RoundOffEnabled,
			doc.Totals.Subtotal, doc.Totals.TotalDiscount, doc.Totals.TotalTax,
			doc.Totals.TotalQty, doc.Totals.RawTotal, doc.Totals.RoundOffValue,
			doc.Totals.Total, doc.Note,
		).Scan(&doc.CreatedAt)
		if err != nil {
			return err
		}

		for i, line := range doc.Lines {
			_, err := q.Exec(ctx, `
				INSERT INTO document_lines (document_id, line_order, item_id, description, quantity,
					unit_price, discount_percent, tax_percent, uom,
					discount_amount, taxable_amount, tax_amount, line_amount)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				doc.ID, i, line.ItemID, line.Description, line.Quantity,
				line.UnitPrice, line.DiscountPercent, line.TaxPercent, line.UOM,
				line.DiscountAmount, line.TaxableAmount, line.TaxAmount, line.LineAmount)
			if err != nil {
				return err
			}
		}

		for i, alloc := range doc.Allocations {
			_, err := q.Exec(ctx, `
				INSERT INTO document_allocations (document_id, line_order, method, amount, reference_no)
				VALUES ($1, $2, $3, $4, $5)`,
				doc.ID, i, alloc.Method, alloc.Amount, alloc.ReferenceNo)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

const documentColumns = `id, number, kind, party_id, doc_date, round_off_enabled,
	subtotal, total_discount, total_tax, total_qty, raw_total, round_off_value, total,
	note, created_at`

func scanDocument(row pgx.Row) (Document, error) {
	var doc Document
	err := row.Scan(&doc.ID, &doc.Number, &doc.Kind, &doc.PartyID, &doc.Date,
		&doc.RoundOffEnabled, &doc.Totals.Subtotal, &doc.Totals.TotalDiscount,
		&doc.Totals.TotalTax, &doc.Totals.TotalQty, &doc.Totals.RawTotal,
		&doc.Totals.RoundOffValue, &doc.Totals.Total, &doc.Note, &doc.CreatedAt)
	return doc, err
}

// Get loads a document with its lines and allocations.
func (r *PG) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	q := db.From(ctx, r.pool)
	doc, err := scanDocument(q.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, shared.ErrNotFound
		}
		return Document{}, err
	}

	lineRows, err := q.Query(ctx, `
		SELECT item_id, description, quantity, unit_price, discount_percent, tax_percent, uom,
			discount_amount, taxable_amount, tax_amount, line_amount
		FROM document_lines WHERE document_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return Document{}, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var line Line
		if err := lineRows.Scan(&line.ItemID, &line.Description, &line.Quantity,
			&line.UnitPrice, &line.DiscountPercent, &line.TaxPercent, &line.UOM,
			&line.DiscountAmount, &line.TaxableAmount, &line.TaxAmount, &line.LineAmount); err != nil {
			return Document{}, err
		}
		line.Subtotal = line.Quantity.Mul(line.UnitPrice)
		doc.Lines = append(doc.Lines, line)
	}
	if err := lineRows.Err(); err != nil {
		return Document{}, err
	}

	allocRows, err := q.Query(ctx, `
		SELECT method, amount, reference_no
		FROM document_allocations WHERE document_id = $1 ORDER BY line_order`, id)
	if err != nil {
		return Document{}, err
	}
	defer allocRows.Close()
	for allocRows.Next() {
		var alloc payments.Allocation
		if err := allocRows.Scan(&alloc.Method, &alloc.Amount, &alloc.ReferenceNo); err != nil {
			return Document{}, err
		}
		doc.Allocations = append(doc.Allocations, alloc)
	}
	return doc, allocRows.Err()
}

// List returns document headers matching the filters, newest first.
func (r *PG) List(ctx context.Context, req ListDocumentsRequest) ([]Document, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE ($1 = '' OR kind = $1)
		  AND ($2 = 0 OR party_id = $2)
		ORDER BY doc_date DESC, created_at DESC
		LIMIT $3 OFFSET $4`,
		string(req.Kind), req.PartyID, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GenerateNumber issues the next document number for the kind. Each kind
// counts independently, so re-used prefixes never skip values when another
// kind is numbered in between.
func (r *PG) GenerateNumber(ctx context.Context, kind Kind) (string, error) {
	var n int64
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO document_counters (kind, last_value)
		VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET last_value = document_counters.last_value + 1
		RETURNING last_value`, string(kind)).Scan(&n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", kind.numberPrefix(), n), nil
}
