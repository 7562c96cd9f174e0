package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
)

func TestErrorsIsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading: %w", NewModelUnavailable("model.json", os.ErrNotExist))

	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected model unavailable to match")
	}
	if errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("did not expect schema mismatch to match")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected cause to stay reachable")
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		expect int
	}{
		{name: "nil", err: nil, expect: http.StatusOK},
		{name: "model unavailable", err: NewModelUnavailable("x", nil), expect: http.StatusServiceUnavailable},
		{name: "out of range", err: NewInputOutOfRange([]FieldError{{Field: "math_score"}}), expect: http.StatusUnprocessableEntity},
		{name: "schema mismatch", err: NewSchemaMismatch("order"), expect: http.StatusConflict},
		{name: "training data", err: NewTrainingDataInvalid("no rows", nil), expect: http.StatusBadRequest},
		{name: "other", err: errors.New("boom"), expect: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatus(tt.err); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestInputOutOfRangeListsFields(t *testing.T) {
	t.Parallel()

	err := NewInputOutOfRange([]FieldError{
		{Field: "math_score", Message: "must be at most 100"},
		{Field: "absence_days", Message: "must be at least 0"},
	})

	if err.Details != "math_score, absence_days" {
		t.Fatalf("unexpected details: %q", err.Details)
	}

	appErr, ok := As(fmt.Errorf("wrapped: %w", err))
	if !ok || len(appErr.Fields) != 2 {
		t.Fatalf("expected fields to survive wrapping, got %+v", appErr)
	}
}
