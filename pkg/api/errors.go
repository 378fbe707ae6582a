package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/bookplot/pkg/cache"
	bperrors "github.com/matzehuels/bookplot/pkg/errors"
	"github.com/matzehuels/bookplot/pkg/observability"
	"github.com/matzehuels/bookplot/pkg/store"
)

// errorBody is the JSON error response.
type errorBody struct {
	Code    bperrors.Code `json:"code"`
	Message string        `json:"message"`
}

// statusFor maps error codes to HTTP statuses.
var statusFor = map[bperrors.Code]int{
	bperrors.ErrCodeInvalidInput:   http.StatusBadRequest,
	bperrors.ErrCodeInvalidSamples: http.StatusUnprocessableEntity,
	bperrors.ErrCodeInvalidAlpha:   http.StatusBadRequest,
	bperrors.ErrCodeInvalidFormat:  http.StatusBadRequest,
	bperrors.ErrCodeInvalidConfig:  http.StatusInternalServerError,
	bperrors.ErrCodeInvalidPath:    http.StatusBadRequest,
	bperrors.ErrCodeNotFound:       http.StatusNotFound,
	bperrors.ErrCodeNotConverged:   http.StatusUnprocessableEntity,
	bperrors.ErrCodeParse:          http.StatusBadRequest,
	bperrors.ErrCodeTimeout:        http.StatusGatewayTimeout,
	bperrors.ErrCodeInternal:       http.StatusInternalServerError,
	bperrors.ErrCodeUnsupported:    http.StatusNotImplemented,
}

// classify extends [bperrors.Classify] with the server-side sentinels.
func classify(err error) *bperrors.Error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		return bperrors.Wrap(bperrors.ErrCodeNotFound, err, "analysis not found")
	case errors.Is(err, cache.ErrNetwork):
		return bperrors.Wrap(bperrors.ErrCodeInternal, err, "cache unavailable")
	}
	return bperrors.Classify(err)
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	if status, ok := statusFor[classify(err).Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
			Code:    bperrors.ErrCodeInvalidInput,
			Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		})
		return
	}

	e := classify(err)
	status := StatusCode(err)
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	}
	msg := bperrors.UserMessage(e)
	if status >= 500 && e.Code == bperrors.ErrCodeInternal {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Code: e.Code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
