package features

import (
	"math"
	"reflect"
	"testing"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

func exampleProfile() profile.StudentProfile {
	return profile.StudentProfile{
		Gender:               "female",
		AbsenceDays:          2,
		WeeklySelfStudyHours: 7,
		MathScore:            50,
		HistoryScore:         60,
		PhysicsScore:         97,
		ChemistryScore:       94,
		BiologyScore:         90,
		EnglishScore:         81,
		GeographyScore:       66,
	}
}

func TestBuildExampleScenario(t *testing.T) {
	t.Parallel()

	v := Build(exampleProfile())

	if v.TotalScore != 538 {
		t.Fatalf("expected total 538, got %d", v.TotalScore)
	}
	if v.AverageScore != 538.0/7.0 {
		t.Fatalf("expected average %v, got %v", 538.0/7.0, v.AverageScore)
	}
	if math.Abs(v.AverageScore-76.857) > 0.001 {
		t.Fatalf("expected average close to 76.857, got %v", v.AverageScore)
	}
	if v.Gender != 1 || v.PartTimeJob != 0 || v.ExtracurricularActivities != 0 {
		t.Fatalf("unexpected encodings: %+v", v)
	}
}

func TestBuildDerivedInvariants(t *testing.T) {
	t.Parallel()

	profiles := []profile.StudentProfile{
		profile.Default(),
		{Gender: "male"},
		{Gender: "FEMALE", MathScore: 100, HistoryScore: 100, PhysicsScore: 100, ChemistryScore: 100, BiologyScore: 100, EnglishScore: 100, GeographyScore: 100},
		{Gender: "female", MathScore: 1, HistoryScore: 2, PhysicsScore: 3, ChemistryScore: 4, BiologyScore: 5, EnglishScore: 6, GeographyScore: 8},
	}

	for _, p := range profiles {
		v := Build(p)
		sum := 0
		for _, s := range p.Scores() {
			sum += s
		}
		if v.TotalScore != sum {
			t.Fatalf("total %d != sum %d", v.TotalScore, sum)
		}
		if v.AverageScore != float64(v.TotalScore)/7.0 {
			t.Fatalf("average %v != total/7", v.AverageScore)
		}
	}
}

func TestBuildIsIdempotentAndOrdered(t *testing.T) {
	t.Parallel()

	p := exampleProfile()
	p.PartTimeJob = true

	first := Build(p).Values()
	second := Build(p).Values()

	if len(first) != 14 || len(DefaultSchema) != 14 {
		t.Fatalf("expected 14 fields, got %d values and %d schema fields", len(first), len(DefaultSchema))
	}
	for i := range first {
		if math.Float64bits(first[i]) != math.Float64bits(second[i]) {
			t.Fatalf("value %d differs between runs", i)
		}
	}

	expected := []float64{1, 1, 2, 0, 7, 50, 60, 97, 94, 90, 81, 66, 538, 538.0 / 7.0}
	if !reflect.DeepEqual(first, expected) {
		t.Fatalf("unexpected order:\n got %v\nwant %v", first, expected)
	}
}

func TestNamedFollowsSchema(t *testing.T) {
	t.Parallel()

	named := Build(exampleProfile()).Named()
	for i, nv := range named {
		if nv.Name != DefaultSchema[i].Name {
			t.Fatalf("position %d: expected %s, got %s", i, DefaultSchema[i].Name, nv.Name)
		}
	}
}

func TestSchemaDiff(t *testing.T) {
	t.Parallel()

	if d := DefaultSchema.Diff(DefaultSchema); d != "" {
		t.Fatalf("expected no diff, got %q", d)
	}

	swapped := append(Schema(nil), DefaultSchema...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if d := DefaultSchema.Diff(swapped); d == "" {
		t.Fatalf("expected swapped columns to be reported")
	}

	if d := DefaultSchema.Diff(DefaultSchema[:13]); d != "expected 14 fields, got 13" {
		t.Fatalf("unexpected diff: %q", d)
	}

	if DefaultSchema.Index("total_score") != 12 || DefaultSchema.Index("nope") != -1 {
		t.Fatalf("unexpected index lookup")
	}
}
