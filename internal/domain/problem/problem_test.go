package problem

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  *Problem
		want int
	}{
		{"not_found", NotFound("Hotel not found: 42"), http.StatusNotFound},
		{"not_available", NotAvailable("No rooms available for hotel: 42"), http.StatusConflict},
		{"invalid_input", InvalidInput("Currency does not match hotel requirements."), http.StatusBadRequest},
		{"bad_gateway", BadGateway("Message was not acknowledged by the broker."), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Status(); got != tc.want {
				t.Fatalf("Status() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFromExtractsWrappedProblem(t *testing.T) {
	orig := NotAvailable("No room pricing available")
	wrapped := fmt.Errorf("search failed: %w", orig)

	p, ok := From(wrapped)
	if !ok {
		t.Fatal("From() did not find the wrapped problem")
	}
	if p != orig {
		t.Fatalf("From() = %v, want the original problem", p)
	}
	if p.Timestamp.IsZero() {
		t.Fatal("problem timestamp not set")
	}
}

func TestFromRejectsPlainErrors(t *testing.T) {
	if _, ok := From(errors.New("connection refused")); ok {
		t.Fatal("plain errors must not classify as problems")
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("pool exhausted")
	p := BadGateway("broker unreachable", cause)
	if !errors.Is(p, cause) {
		t.Fatal("cause lost from the error chain")
	}
}
