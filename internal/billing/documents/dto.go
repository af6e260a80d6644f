package documents

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/billing/calc"
	"github.com/bizledger/bizledger/internal/billing/payments"
	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/shared"
)

const dateLayout = "2006-01-02"

type lineRequest struct {
	ItemID          int64   `json:"item_id"`
	Description     string  `json:"description" validate:"max=500"`
	Quantity        float64 `json:"quantity" validate:"gte=0"`
	UnitPrice       float64 `json:"unit_price" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	TaxPercent      float64 `json:"tax_percent" validate:"gte=0,lte=100"`
	UOM             string  `json:"uom" validate:"max=20"`
}

func (l lineRequest) toLineItem() calc.LineItem {
	return calc.LineItem{
		ItemID:          l.ItemID,
		Description:     l.Description,
		Quantity:        money.FromFloat(l.Quantity),
		UnitPrice:       money.FromFloat(l.UnitPrice),
		DiscountPercent: money.FromFloat(l.DiscountPercent),
		TaxPercent:      money.FromFloat(l.TaxPercent),
		UOM:             l.UOM,
	}
}

type allocationRequest struct {
	Method      string  `json:"method" validate:"required"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	ReferenceNo string  `json:"reference_no" validate:"max=100"`
}

type createDocumentRequest struct {
	Kind            string              `json:"kind" validate:"required"`
	PartyID         int64               `json:"party_id" validate:"required,gt=0"`
	Date            string              `json:"date" validate:"required"`
	Lines           []lineRequest       `json:"lines" validate:"required,min=1,dive"`
	RoundOffEnabled bool                `json:"round_off_enabled"`
	RoundOffValue   *float64            `json:"round_off_value"`
	Allocations     []allocationRequest `json:"allocations" validate:"dive"`
	Note            string              `json:"note" validate:"max=500"`
}

func (r createDocumentRequest) toInput() (CreateDocumentInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return CreateDocumentInput{}, shared.NewInvalidInput("date", "must be YYYY-MM-DD")
	}

	lines := make([]calc.LineItem, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, l.toLineItem())
	}

	var roundOff *decimal.Decimal
	if r.RoundOffValue != nil {
		v := money.FromFloat(*r.RoundOffValue)
		roundOff = &v
	}

	return CreateDocumentInput{
		Kind:            Kind(r.Kind),
		PartyID:         r.PartyID,
		Date:            date,
		Lines:           lines,
		RoundOffEnabled: r.RoundOffEnabled,
		RoundOffValue:   roundOff,
		Allocations:     toAllocations(r.Allocations),
		Note:            r.Note,
	}, nil
}

type createPaymentRequest struct {
	PartyID     int64               `json:"party_id" validate:"required,gt=0"`
	Direction   string              `json:"direction" validate:"required,oneof=IN OUT"`
	Date        string              `json:"date" validate:"required"`
	Amount      float64             `json:"amount" validate:"required,gt=0"`
	Allocations []allocationRequest `json:"allocations" validate:"required,min=1,dive"`
	Note        string              `json:"note" validate:"max=500"`
}

func (r createPaymentRequest) toInput() (CreatePaymentInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return CreatePaymentInput{}, shared.NewInvalidInput("date", "must be YYYY-MM-DD")
	}
	return CreatePaymentInput{
		PartyID:     r.PartyID,
		Direction:   PaymentDirection(r.Direction),
		Date:        date,
		Amount:      money.FromFloat(r.Amount),
		Allocations: toAllocations(r.Allocations),
		Note:        r.Note,
	}, nil
}

func toAllocations(reqs []allocationRequest) []payments.Allocation {
	if len(reqs) == 0 {
		return nil
	}
	allocs := make([]payments.Allocation, 0, len(reqs))
	for _, a := range reqs {
		allocs = append(allocs, payments.Allocation{
			Method:      payments.Method(a.Method),
			Amount:      money.FromFloat(a.Amount),
			ReferenceNo: a.ReferenceNo,
		})
	}
	return allocs
}

type createDocumentResponse struct {
	Document Document         `json:"document"`
	Payment  payments.Summary `json:"payment"`
}

type listDocumentsResponse struct {
	Documents []Document `json:"documents"`
}
