package masterdata

import (
	"context"

	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/shared"
)

// Service handles registry business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateParty registers a new customer or supplier.
func (s *Service) CreateParty(ctx context.Context, p Party) (Party, error) {
	if p.Name == "" {
		return Party{}, shared.NewInvalidInput("name", "required")
	}
	if !p.Type.Valid() {
		return Party{}, shared.NewInvalidInput("type", "unknown party type")
	}
	return s.repo.CreateParty(ctx, p)
}

// GetParty returns a single party.
func (s *Service) GetParty(ctx context.Context, id int64) (Party, error) {
	return s.repo.GetParty(ctx, id)
}

// ListParties returns parties matching the search term.
func (s *Service) ListParties(ctx context.Context, search string) ([]Party, error) {
	return s.repo.ListParties(ctx, search)
}

// CreateItem registers a new item.
func (s *Service) CreateItem(ctx context.Context, item Item) (Item, error) {
	if item.Name == "" {
		return Item{}, shared.NewInvalidInput("name", "required")
	}
	if money.IsNegative(item.SalePrice) {
		return Item{}, shared.NewInvalidInput("sale_price", "must not be negative")
	}
	if !money.InPercentRange(item.TaxPercent) {
		return Item{}, shared.NewInvalidInput("tax_percent", "must be between 0 and 100")
	}
	return s.repo.CreateItem(ctx, item)
}

// GetItem returns a single item.
func (s *Service) GetItem(ctx context.Context, id int64) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

// ListItems returns items matching the search term.
func (s *Service) ListItems(ctx context.Context, search string) ([]Item, error) {
	return s.repo.ListItems(ctx, search)
}
