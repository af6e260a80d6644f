package cashflow

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/ledger"
	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler serves the cash-flow report and manual cash adjustments.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers cash-flow routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/cashflow", h.report)
	r.Post("/cash-adjustments", h.adjust)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	from := now.AddDate(0, -1, 0)
	to := now
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(dateLayout, v); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid from date")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(dateLayout, v); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid to date")
			return
		}
	}

	report, err := h.service.Report(r.Context(), from, to)
	if err != nil {
		h.logger.Error("cashflow report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

type cashAdjustmentRequest struct {
	Date   string  `json:"date" validate:"required"`
	Amount float64 `json:"amount" validate:"required"`
	Note   string  `json:"note" validate:"max=500"`
}

// adjust records a manual cash increase (positive amount) or decrease
// (negative amount).
func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var req cashAdjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid date")
		return
	}

	amount := money.FromFloat(req.Amount)
	e := Entry{
		Type: ledger.EntryCashAdjustment,
		Date: date,
		Cash: true,
		Note: req.Note,
	}
	if amount.Sign() >= 0 {
		e.Credit = amount
		e.Debit = decimal.Zero
	} else {
		e.Debit = amount.Abs()
		e.Credit = decimal.Zero
	}

	stored, err := h.service.Record(r.Context(), e)
	if err != nil {
		h.logger.Error("cash adjustment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, stored)
}
