package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestBusinessErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *BusinessError
		kind ErrorKind
		code int
	}{
		{"not found", NotFound("member %s missing", "m1"), KindNotFound, http.StatusNotFound},
		{"invalid state", InvalidState("bad precondition"), KindInvalidState, http.StatusBadRequest},
		{"invariant violation", InvariantViolation("count drifted"), KindInvariantViolation, http.StatusBadRequest},
		{"conflict", Conflict("lost the race"), KindConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Expected kind %d, got %d", tt.kind, tt.err.Kind)
			}
			if tt.err.HTTPStatus() != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, tt.err.HTTPStatus())
			}
		})
	}
}

func TestAsBusinessError_UnwrapsChain(t *testing.T) {
	inner := NotFound("record missing")
	wrapped := fmt.Errorf("loading report: %w", inner)

	bizErr, ok := AsBusinessError(wrapped)
	if !ok {
		t.Fatal("Expected business error in chain")
	}
	if bizErr.Kind != KindNotFound {
		t.Errorf("Expected not found kind, got %d", bizErr.Kind)
	}

	if _, ok := AsBusinessError(errors.New("plain failure")); ok {
		t.Error("Expected plain error not to match")
	}
}
