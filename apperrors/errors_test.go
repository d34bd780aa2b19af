package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("legs", "empty"), http.StatusBadRequest},
		{"data unavailable", NewDataUnavailableError("O:AAPL", "greeks"), http.StatusBadRequest},
		{"provider 403", NewProviderError("Polygon", 403, "forbidden", nil), http.StatusForbidden},
		{"provider 500", NewProviderError("Polygon", 500, "boom", nil), http.StatusInternalServerError},
		{"provider transport", NewProviderError("FMP", 0, "", errors.New("dial tcp: timeout")), http.StatusBadGateway},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped validation", fmt.Errorf("analyze: %w", NewValidationError("", "bad")), http.StatusBadRequest},
		{"unknown", errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Errorf("%s: StatusCode = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewProviderError("Polygon", 0, "", cause)
	if !errors.Is(err, cause) {
		t.Error("ProviderError does not unwrap to its cause")
	}
}

func TestErrorMessages(t *testing.T) {
	if got := NewValidationError("quantity", "must be positive").Error(); got != "validation error: quantity: must be positive" {
		t.Errorf("validation message = %q", got)
	}
	if got := NewProviderError("Polygon", 429, "rate limited", nil).Error(); got != "Polygon error 429: rate limited" {
		t.Errorf("provider message = %q", got)
	}
}
