package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"single", NewValidationError("bad %s", "input"), true},
		{"wrapped", fmt.Errorf("create receipt: %w", NewValidationError("bad")), true},
		{"collection", func() error {
			var ve ValidationErrors
			ve.Add("first")
			return ve.Err()
		}(), true},
		{"not found", ErrNotFound, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	var ve ValidationErrors
	if ve.Err() != nil {
		t.Fatal("expected nil error when nothing was added")
	}

	ve.Add("merchant is required")
	ve.Add("currency %q is invalid", "EURO")

	err := ve.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	want := `validation failed: merchant is required; currency "EURO" is invalid`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
