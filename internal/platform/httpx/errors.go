// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/bizledger/bizledger/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var invalid *shared.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		Problem(w, http.StatusBadRequest, "Invalid Input", invalid.Error())
	case errors.Is(err, shared.ErrInconsistentAllocation):
		Problem(w, http.StatusBadRequest, "Inconsistent Allocation", err.Error())
	case errors.Is(err, shared.ErrStaleRecompute):
		Problem(w, http.StatusConflict, "Stale Recompute", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
