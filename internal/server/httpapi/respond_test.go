package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", &badRequestError{msg: "bad"}, http.StatusBadRequest},
		{"not found", common.ErrNotFound, http.StatusNotFound},
		{"forbidden", common.ErrForbidden, http.StatusForbidden},
		{"conflict", common.ErrConflict, http.StatusConflict},
		{"unauthorized", common.ErrUnauthorized, http.StatusUnauthorized},
		{"invalid token", common.ErrInvalidToken, http.StatusUnauthorized},
		{"transient io", common.ErrTransientIO, http.StatusServiceUnavailable},
		{"wrapped transient io", fmt.Errorf("blob put: %w", common.ErrTransientIO), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestStatusFor_CascadeWithTransientCause(t *testing.T) {
	// An incomplete cascade stays a 500 even when the blobs failed with a
	// transient error: the response must report the leftover versions, not
	// offer a bare retry-later.
	err := &services.CascadeError{
		RepositoryID: "r1",
		Failures: []services.CascadeFailure{
			{VersionID: "v1", StorageKey: "k1", Err: fmt.Errorf("delete blob: %w", common.ErrTransientIO)},
		},
	}
	if !errors.Is(err, common.ErrTransientIO) {
		t.Fatalf("cascade error must unwrap to its cause")
	}
	if got := statusFor(err); got != http.StatusInternalServerError {
		t.Errorf("statusFor(cascade) = %d, want %d", got, http.StatusInternalServerError)
	}
}
