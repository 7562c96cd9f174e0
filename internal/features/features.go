// Package features turns a student profile into the fixed-order numeric
// vector the classifier is trained on and scored with.
package features

import (
	"fmt"
	"strings"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

// Field types recorded in the schema.
const (
	TypeInteger = "integer"
	TypeNumber  = "number"
)

// Field is one named column of the feature vector.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is the ordered list of feature columns.
type Schema []Field

// DefaultSchema is the column order used by both training and inference.
var DefaultSchema = Schema{
	{Name: "gender", Type: TypeInteger},
	{Name: "part_time_job", Type: TypeInteger},
	{Name: "absence_days", Type: TypeInteger},
	{Name: "extracurricular_activities", Type: TypeInteger},
	{Name: "weekly_self_study_hours", Type: TypeNumber},
	{Name: "math_score", Type: TypeInteger},
	{Name: "history_score", Type: TypeInteger},
	{Name: "physics_score", Type: TypeInteger},
	{Name: "chemistry_score", Type: TypeInteger},
	{Name: "biology_score", Type: TypeInteger},
	{Name: "english_score", Type: TypeInteger},
	{Name: "geography_score", Type: TypeInteger},
	{Name: "total_score", Type: TypeInteger},
	{Name: "average_score", Type: TypeNumber},
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of a column, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Diff describes how other differs from s. An empty result means identical.
func (s Schema) Diff(other Schema) string {
	if len(s) != len(other) {
		return fmt.Sprintf("expected %d fields, got %d", len(s), len(other))
	}
	var diffs []string
	for i := range s {
		if s[i] != other[i] {
			diffs = append(diffs, fmt.Sprintf("position %d: expected %s(%s), got %s(%s)",
				i, s[i].Name, s[i].Type, other[i].Name, other[i].Type))
		}
	}
	return strings.Join(diffs, "; ")
}

// Vector is the encoded form of a student profile.
type Vector struct {
	Gender                    int     `json:"gender"`
	PartTimeJob               int     `json:"part_time_job"`
	AbsenceDays               int     `json:"absence_days"`
	ExtracurricularActivities int     `json:"extracurricular_activities"`
	WeeklySelfStudyHours      float64 `json:"weekly_self_study_hours"`
	MathScore                 int     `json:"math_score"`
	HistoryScore              int     `json:"history_score"`
	PhysicsScore              int     `json:"physics_score"`
	ChemistryScore            int     `json:"chemistry_score"`
	BiologyScore              int     `json:"biology_score"`
	EnglishScore              int     `json:"english_score"`
	GeographyScore            int     `json:"geography_score"`
	TotalScore                int     `json:"total_score"`
	AverageScore              float64 `json:"average_score"`
}

// Build encodes a profile. It performs no validation.
func Build(p profile.StudentProfile) Vector {
	scores := p.Scores()
	total := 0
	for _, s := range scores {
		total += s
	}

	return Vector{
		Gender:                    profile.EncodeGender(p.Gender),
		PartTimeJob:               profile.BoolFlag(p.PartTimeJob),
		AbsenceDays:               p.AbsenceDays,
		ExtracurricularActivities: profile.BoolFlag(p.ExtracurricularActivities),
		WeeklySelfStudyHours:      p.WeeklySelfStudyHours,
		MathScore:                 scores[0],
		HistoryScore:              scores[1],
		PhysicsScore:              scores[2],
		ChemistryScore:            scores[3],
		BiologyScore:              scores[4],
		EnglishScore:              scores[5],
		GeographyScore:            scores[6],
		TotalScore:                total,
		AverageScore:              float64(total) / 7.0,
	}
}

// Schema returns the schema this vector is laid out in.
func (v Vector) Schema() Schema {
	return DefaultSchema
}

// Values returns the vector in schema order.
func (v Vector) Values() []float64 {
	return []float64{
		float64(v.Gender),
		float64(v.PartTimeJob),
		float64(v.AbsenceDays),
		float64(v.ExtracurricularActivities),
		v.WeeklySelfStudyHours,
		float64(v.MathScore),
		float64(v.HistoryScore),
		float64(v.PhysicsScore),
		float64(v.ChemistryScore),
		float64(v.BiologyScore),
		float64(v.EnglishScore),
		float64(v.GeographyScore),
		float64(v.TotalScore),
		v.AverageScore,
	}
}

// Named pairs each value with its column name, in schema order.
func (v Vector) Named() []NamedValue {
	values := v.Values()
	out := make([]NamedValue, len(values))
	for i, f := range DefaultSchema {
		out[i] = NamedValue{Name: f.Name, Value: values[i]}
	}
	return out
}

// NamedValue is one column of a vector.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
