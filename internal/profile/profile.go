// Package profile holds the raw student profile collected from a form, a JSON
// request or an interactive prompt, together with its encoding rules.
package profile

import (
	"strings"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"

	MaxAbsenceDays = 365
	MaxStudyHours  = 168
	MaxScore       = 100
	SubjectCount   = 7
)

// StudentProfile is the user-entered input of a single prediction.
type StudentProfile struct {
	Gender                    string  `json:"gender" mapstructure:"gender" validate:"required,gender"`
	PartTimeJob               bool    `json:"part_time_job" mapstructure:"part_time_job"`
	AbsenceDays               int     `json:"absence_days" mapstructure:"absence_days" validate:"gte=0,lte=365"`
	ExtracurricularActivities bool    `json:"extracurricular_activities" mapstructure:"extracurricular_activities"`
	WeeklySelfStudyHours      float64 `json:"weekly_self_study_hours" mapstructure:"weekly_self_study_hours" validate:"gte=0,lte=168"`
	MathScore                 int     `json:"math_score" mapstructure:"math_score" validate:"gte=0,lte=100"`
	HistoryScore              int     `json:"history_score" mapstructure:"history_score" validate:"gte=0,lte=100"`
	PhysicsScore              int     `json:"physics_score" mapstructure:"physics_score" validate:"gte=0,lte=100"`
	ChemistryScore            int     `json:"chemistry_score" mapstructure:"chemistry_score" validate:"gte=0,lte=100"`
	BiologyScore              int     `json:"biology_score" mapstructure:"biology_score" validate:"gte=0,lte=100"`
	EnglishScore              int     `json:"english_score" mapstructure:"english_score" validate:"gte=0,lte=100"`
	GeographyScore            int     `json:"geography_score" mapstructure:"geography_score" validate:"gte=0,lte=100"`
}

// Subject names one of the seven scored subjects.
type Subject struct {
	Key   string
	Label string
}

// Subjects lists the scored subjects in feature order.
var Subjects = []Subject{
	{Key: "math_score", Label: "Math score"},
	{Key: "history_score", Label: "History score"},
	{Key: "physics_score", Label: "Physics score"},
	{Key: "chemistry_score", Label: "Chemistry score"},
	{Key: "biology_score", Label: "Biology score"},
	{Key: "english_score", Label: "English score"},
	{Key: "geography_score", Label: "Geography score"},
}

// Default returns the profile the predictor form starts with.
func Default() StudentProfile {
	return StudentProfile{
		Gender:               GenderMale,
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

// Scores returns the seven subject scores in feature order.
func (p StudentProfile) Scores() [SubjectCount]int {
	return [SubjectCount]int{
		p.MathScore,
		p.HistoryScore,
		p.PhysicsScore,
		p.ChemistryScore,
		p.BiologyScore,
		p.EnglishScore,
		p.GeographyScore,
	}
}

// Score returns the score stored under a subject key.
func (p StudentProfile) Score(key string) (int, bool) {
	for i, s := range Subjects {
		if s.Key == key {
			return p.Scores()[i], true
		}
	}
	return 0, false
}

// EncodeGender returns 1 for "female" in any letter case, 0 for anything else.
func EncodeGender(gender string) int {
	if strings.EqualFold(strings.TrimSpace(gender), GenderFemale) {
		return 1
	}
	return 0
}

// EncodeFlag returns 1 for true-like values and 0 for everything else, including nil.
func EncodeFlag(v any) int {
	switch val := v.(type) {
	case bool:
		if val {
			return 1
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "yes", "y", "true", "t", "1", "on":
			return 1
		}
	case int:
		if val != 0 {
			return 1
		}
	case int64:
		if val != 0 {
			return 1
		}
	case float64:
		if val != 0 {
			return 1
		}
	}
	return 0
}

// BoolFlag encodes a boolean as 1 or 0.
func BoolFlag(b bool) int {
	return EncodeFlag(b)
}
