package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/platform/db"
	"github.com/bizledger/bizledger/internal/shared"
)

// Repository defines data access for parties and items.
type Repository interface {
	CreateParty(ctx context.Context, p Party) (Party, error)
	GetParty(ctx context.Context, id int64) (Party, error)
	ListParties(ctx context.Context, search string) ([]Party, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	GetItem(ctx context.Context, id int64) (Item, error)
	ListItems(ctx context.Context, search string) ([]Item, error)
}

// PG is the PostgreSQL backed Repository.
type PG struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (r *PG) CreateParty(ctx context.Context, p Party) (Party, error) {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO parties (name, type, phone, email, address, gstin, opening_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		p.Name, p.Type, p.Phone, p.Email, p.Address, p.GSTIN, p.OpeningBalance,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Party{}, err
	}
	return p, nil
}

func (r *PG) GetParty(ctx context.Context, id int64) (Party, error) {
	var p Party
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, type, phone, email, address, gstin, opening_balance, created_at, updated_at
		FROM parties WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Type, &p.Phone, &p.Email, &p.Address, &p.GSTIN,
		&p.OpeningBalance, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Party{}, shared.ErrNotFound
		}
		return Party{}, err
	}
	return p, nil
}

func (r *PG) ListParties(ctx context.Context, search string) ([]Party, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT id, name, type, phone, email, address, gstin, opening_balance, created_at, updated_at
		FROM parties
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name`, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Phone, &p.Email, &p.Address,
			&p.GSTIN, &p.OpeningBalance, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (r *PG) CreateItem(ctx context.Context, item Item) (Item, error) {
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO items (name, sku, uom, sale_price, tax_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		item.Name, item.SKU, item.UOM, item.SalePrice, item.TaxPercent,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *PG) GetItem(ctx context.Context, id int64) (Item, error) {
	var item Item
	err := db.From(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, sku, uom, sale_price, tax_percent, created_at, updated_at
		FROM items WHERE id = $1`, id,
	).Scan(&item.ID, &item.Name, &item.SKU, &item.UOM, &item.SalePrice,
		&item.TaxPercent, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

func (r *PG) ListItems(ctx context.Context, search string) ([]Item, error) {
	rows, err := db.From(ctx, r.pool).Query(ctx, `
		SELECT id, name, sku, uom, sale_price, tax_percent, created_at, updated_at
		FROM items
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name`, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.SKU, &item.UOM, &item.SalePrice,
			&item.TaxPercent, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// OpeningBalance implements the ledger's OpeningBalances port.
func (r *PG) OpeningBalance(ctx context.Context, partyID int64) (decimal.Decimal, error) {
	p, err := r.GetParty(ctx, partyID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return p.OpeningBalance, nil
}
