package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
)

// respondJSON writes a JSON response with the given status code and data.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError maps err onto an HTTP status and writes {"error": ...}.
// Authorization and not-found failures stay distinguishable here while the
// body never reveals whether a denied resource exists.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}
	s.respondJSON(w, status, map[string]string{"error": messageFor(err, status)})
}

func statusFor(err error) int {
	var cascadeErr *services.CascadeError
	var badReq *badRequestError

	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	// A partial cascade stays a 500 even when its failures wrap a transient
	// I/O error: the caller sees which versions survived, not the backend hiccup.
	case errors.As(err, &cascadeErr):
		return http.StatusInternalServerError
	case errors.Is(err, common.ErrTransientIO):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor keeps 5xx bodies generic; the detail goes to the log.
func messageFor(err error, status int) string {
	var cascadeErr *services.CascadeError
	if errors.As(err, &cascadeErr) {
		return cascadeErr.Error()
	}
	if status >= http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

// decodeJSON reads the request body into dst, failing with a 400-mapped
// error on malformed input.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &badRequestError{msg: "invalid request body"}
	}
	return nil
}
