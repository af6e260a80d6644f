package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bizledger/bizledger/internal/platform/httpx"
)

// Handler serves party ledger endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/parties/{id}/ledger", h.statement)
	r.Post("/parties/{id}/recompute", h.recompute)
	r.Delete("/entries/{id}", h.remove)
}

type statementResponse struct {
	PartyID        int64           `json:"party_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Entries        []Entry         `json:"entries"`
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	partyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid party id")
		return
	}

	opening, entries, err := h.service.Statement(r.Context(), partyID)
	if err != nil {
		h.logger.Error("ledger statement", slog.Any("error", err), slog.Int64("party_id", partyID))
		httpx.RespondError(w, err)
		return
	}

	closing := opening
	if len(entries) > 0 {
		closing = entries[len(entries)-1].Balance
	}
	httpx.JSON(w, http.StatusOK, statementResponse{
		PartyID:        partyID,
		OpeningBalance: opening,
		ClosingBalance: closing,
		Entries:        entries,
	})
}

func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	partyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid party id")
		return
	}
	if err := h.service.Recompute(r.Context(), partyID); err != nil {
		h.logger.Error("ledger recompute", slog.Any("error", err), slog.Int64("party_id", partyID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "recomputed"})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	if err := h.service.Remove(r.Context(), id); err != nil {
		h.logger.Error("ledger entry delete", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
