package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewAuthError("no"), http.StatusUnauthorized},
		{NewForbiddenError("no"), http.StatusForbidden},
		{NewNotFoundError("gone", nil), http.StatusNotFound},
		{NewConflictError("dup"), http.StatusConflict},
		{NewExternalServiceError("down", errors.New("dial")), http.StatusBadGateway},
		{New(UnknownError, "?", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.StatusCode(); got != tc.want {
			t.Errorf("%q: got %d want %d", tc.err.Message, got, tc.want)
		}
	}
}

func TestWrappedChecks(t *testing.T) {
	base := NewExternalServiceError("user service unavailable", errors.New("timeout"))
	wrapped := fmt.Errorf("login: %w", base)

	if !IsExternal(wrapped) {
		t.Fatal("expected wrapped error to be external")
	}
	if IsNotFound(wrapped) {
		t.Fatal("did not expect not-found")
	}
	if got := Message(wrapped, "fallback"); got != "user service unavailable" {
		t.Errorf("Message = %q", got)
	}
	if got := Message(errors.New("plain"), "fallback"); got != "fallback" {
		t.Errorf("Message = %q", got)
	}
	if got := base.Error(); got != "user service unavailable: timeout" {
		t.Errorf("Error() = %q", got)
	}
}
