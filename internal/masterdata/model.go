// Package masterdata manages the party and item registries that documents
// and ledgers reference.
package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyType classifies a party by how they trade with the business.
type PartyType string

const (
	PartyCustomer PartyType = "CUSTOMER"
	PartySupplier PartyType = "SUPPLIER"
	PartyBoth     PartyType = "BOTH"
)

// Valid reports whether the party type is known.
func (t PartyType) Valid() bool {
	switch t {
	case PartyCustomer, PartySupplier, PartyBoth:
		return true
	}
	return false
}

// Party represents a customer or supplier. OpeningBalance seeds the party's
// ledger fold.
type Party struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Type           PartyType       `json:"type"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	Address        string          `json:"address,omitempty"`
	GSTIN          string          `json:"gstin,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Item represents a sellable or purchasable item with its default pricing.
type Item struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	SKU        string          `json:"sku,omitempty"`
	UOM        string          `json:"uom"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
