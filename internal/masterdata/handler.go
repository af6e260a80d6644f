package masterdata

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/platform/httpx"
)

// Handler serves party and item registry endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers registry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/parties", h.listParties)
	r.Post("/parties", h.createParty)
	r.Get("/parties/{id}", h.getParty)
	r.Get("/items", h.listItems)
	r.Post("/items", h.createItem)
	r.Get("/items/{id}", h.getItem)
}

type createPartyRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	Type           string  `json:"type" validate:"required,oneof=CUSTOMER SUPPLIER BOTH"`
	Phone          string  `json:"phone" validate:"max=20"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Address        string  `json:"address" validate:"max=500"`
	GSTIN          string  `json:"gstin" validate:"max=15"`
	OpeningBalance float64 `json:"opening_balance"`
}

func (h *Handler) createParty(w http.ResponseWriter, r *http.Request) {
	var req createPartyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	party, err := h.service.CreateParty(r.Context(), Party{
		Name:           req.Name,
		Type:           PartyType(req.Type),
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		GSTIN:          req.GSTIN,
		OpeningBalance: money.FromFloat(req.OpeningBalance),
	})
	if err != nil {
		h.logger.Error("create party", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, party)
}

func (h *Handler) getParty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid party id")
		return
	}
	party, err := h.service.GetParty(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, party)
}

func (h *Handler) listParties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.service.ListParties(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("list parties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, parties)
}

type createItemRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	SKU        string  `json:"sku" validate:"max=50"`
	UOM        string  `json:"uom" validate:"max=20"`
	SalePrice  float64 `json:"sale_price" validate:"gte=0"`
	TaxPercent float64 `json:"tax_percent" validate:"gte=0,lte=100"`
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	item, err := h.service.CreateItem(r.Context(), Item{
		Name:       req.Name,
		SKU:        req.SKU,
		UOM:        req.UOM,
		SalePrice:  money.FromFloat(req.SalePrice),
		TaxPercent: money.FromFloat(req.TaxPercent),
	})
	if err != nil {
		h.logger.Error("create item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid item id")
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}
