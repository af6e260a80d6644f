package documents

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bizledger/bizledger/internal/platform/httpx"
)

// Handler serves document and payment voucher endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/documents/preview", h.preview)
	r.Post("/documents", h.create)
	r.Get("/documents", h.list)
	r.Get("/documents/{id}", h.get)
	r.Post("/payments", h.createPayment)
}

func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request) (CreateDocumentInput, bool) {
	var req createDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return CreateDocumentInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return CreateDocumentInput{}, false
	}
	input, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return CreateDocumentInput{}, false
	}
	return input, true
}

// preview recomputes a form without saving. Forms call this on every edit, so
// it never touches storage.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	preview, err := h.service.Preview(input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, preview)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	doc, summary, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create document", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, createDocumentResponse{Document: doc, Payment: summary})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListDocumentsRequest{Kind: Kind(q.Get("kind"))}
	if req.Kind != "" && !req.Kind.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown document kind")
		return
	}
	if v := q.Get("party_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid party_id")
			return
		}
		req.PartyID = id
	}
	req.Limit, _ = strconv.Atoi(q.Get("limit"))
	req.Offset, _ = strconv.Atoi(q.Get("offset"))

	docs, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list documents", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listDocumentsResponse{Documents: docs})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.CreatePayment(r.Context(), input)
	if err != nil {
		h.logger.Error("create payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, summary)
}
