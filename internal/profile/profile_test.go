package profile

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
)

func TestEncodeGender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect int
	}{
		{input: "female", expect: 1},
		{input: "Female", expect: 1},
		{input: "  FEMALE ", expect: 1},
		{input: "male", expect: 0},
		{input: "", expect: 0},
		{input: "other", expect: 0},
	}

	for _, tt := range tests {
		if got := EncodeGender(tt.input); got != tt.expect {
			t.Fatalf("EncodeGender(%q): expected %d, got %d", tt.input, tt.expect, got)
		}
	}
}

func TestEncodeFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		expect int
	}{
		{name: "true", input: true, expect: 1},
		{name: "false", input: false, expect: 0},
		{name: "yes", input: "yes", expect: 1},
		{name: "Yes upper", input: "YES", expect: 1},
		{name: "checkbox on", input: "on", expect: 1},
		{name: "string true", input: "True", expect: 1},
		{name: "one", input: "1", expect: 1},
		{name: "no", input: "no", expect: 0},
		{name: "empty", input: "", expect: 0},
		{name: "absent", input: nil, expect: 0},
		{name: "number", input: 1.0, expect: 1},
		{name: "zero", input: 0, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EncodeFlag(tt.input); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default profile to be valid: %v", err)
	}
}

func TestValidateReportsEveryOffendingField(t *testing.T) {
	t.Parallel()

	p := Default()
	p.Gender = "unknown"
	p.MathScore = 101
	p.AbsenceDays = -1
	p.WeeklySelfStudyHours = -0.5

	err := p.Validate()
	if !errors.Is(err, apperrors.ErrInputOutOfRange) {
		t.Fatalf("expected input out of range, got %v", err)
	}

	appErr, _ := apperrors.As(err)
	got := map[string]string{}
	for _, f := range appErr.Fields {
		got[f.Field] = f.Message
	}

	for _, field := range []string{"gender", "math_score", "absence_days", "weekly_self_study_hours"} {
		if _, ok := got[field]; !ok {
			t.Fatalf("expected %s to be reported, got %v", field, got)
		}
	}
	if got["math_score"] != "must be at most 100" {
		t.Fatalf("unexpected message: %q", got["math_score"])
	}
}

func TestDecodeForm(t *testing.T) {
	t.Parallel()

	p, err := DecodeForm(map[string][]string{
		"gender":                  {"Female"},
		"part_time_job":           {"no"},
		"absence_days":            {" 2 "},
		"weekly_self_study_hours": {"7.5"},
		"math_score":              {"50"},
		"history_score":           {"60"},
		"physics_score":           {"97"},
		"chemistry_score":         {"94"},
		"biology_score":           {"90"},
		"english_score":           {"81"},
		"geography_score":         {"66"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Gender != GenderFemale {
		t.Fatalf("expected gender to be normalized, got %q", p.Gender)
	}
	if p.PartTimeJob {
		t.Fatalf("expected part time job to be false")
	}
	if p.ExtracurricularActivities {
		t.Fatalf("expected absent checkbox to decode as false")
	}
	if p.AbsenceDays != 2 || p.WeeklySelfStudyHours != 7.5 || p.PhysicsScore != 97 {
		t.Fatalf("unexpected numeric fields: %+v", p)
	}
}

func TestDecodeJSONValues(t *testing.T) {
	t.Parallel()

	p, err := Decode(map[string]any{
		"gender":                     "male",
		"part_time_job":              true,
		"extracurricular_activities": "yes",
		"absence_days":               float64(3),
		"math_score":                 float64(88),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.PartTimeJob || !p.ExtracurricularActivities {
		t.Fatalf("expected flags to be set: %+v", p)
	}
	if p.AbsenceDays != 3 || p.MathScore != 88 {
		t.Fatalf("unexpected numbers: %+v", p)
	}
}

func TestDecodeRejectsFractionalScores(t *testing.T) {
	t.Parallel()

	if _, err := Decode(map[string]any{"math_score": 72.5}); err == nil {
		t.Fatalf("expected fractional score to be rejected")
	}
	if _, err := Decode(map[string]any{"math_score": "abc"}); err == nil {
		t.Fatalf("expected non-numeric score to be rejected")
	}
}

func TestDecodeRejectsHugeWholeNumbers(t *testing.T) {
	t.Parallel()

	for _, v := range []any{1e20, -1e20, "1e20", math.Inf(1)} {
		_, err := Decode(map[string]any{"math_score": v})
		if err == nil || !strings.Contains(err.Error(), "out of range") {
			t.Fatalf("expected %v to be out of range, got %v", v, err)
		}
	}

	p, err := Decode(map[string]any{"absence_days": "1e1"})
	if err != nil || p.AbsenceDays != 10 {
		t.Fatalf("expected 1e1 to decode as 10, got %d (%v)", p.AbsenceDays, err)
	}
}

func TestScoreLookup(t *testing.T) {
	t.Parallel()

	p := Default()
	if v, ok := p.Score("chemistry_score"); !ok || v != 94 {
		t.Fatalf("expected chemistry score 94, got %d (%v)", v, ok)
	}
	if _, ok := p.Score("art_score"); ok {
		t.Fatalf("did not expect unknown subject to resolve")
	}
}
