// Package api holds the JSON bodies exchanged over /api/v1.
package api

import (
	"fmt"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/advisor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/features"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/predictor"
)

const (
	PredictionsPath = "/api/v1/predictions"
	ModelPath       = "/api/v1/model"
)

// Success wraps every successful response.
type Success[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Failure is the body of every error response.
type Failure struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    string                 `json:"details,omitempty"`
	Fields     []apperrors.FieldError `json:"fields,omitempty"`
	DevMessage string                 `json:"dev_message,omitempty"`
}

// Err turns a failure body back into an error. Classified failures keep
// their code so errors.Is works on the client side too.
func (f Failure) Err(status int) error {
	if f.Code != "" {
		return &apperrors.AppError{
			Code:    apperrors.Code(f.Code),
			Message: f.Message,
			Details: f.Details,
			Fields:  f.Fields,
		}
	}
	if f.Message == "" {
		return fmt.Errorf("server returned status %d", status)
	}
	return fmt.Errorf("server returned status %d: %s", status, f.Message)
}

// Career is one ranked career in a prediction response.
type Career struct {
	Rank        int     `json:"rank"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Percent     string  `json:"percent"`
}

// Prediction is the data returned by POST /api/v1/predictions.
type Prediction struct {
	ID       string                `json:"id"`
	ModelID  string                `json:"model_id"`
	Careers  []Career              `json:"careers"`
	Features []features.NamedValue `json:"features"`
	Advice   *advisor.Advice       `json:"advice,omitempty"`
}

// Top returns the first n careers. A negative n returns none.
func (p Prediction) Top(n int) []Career {
	if n < 0 {
		n = 0
	}
	if n > len(p.Careers) {
		n = len(p.Careers)
	}
	return p.Careers[:n]
}

// Careers converts ranked predictions into response rows.
func Careers(ranked []predictor.Prediction) []Career {
	out := make([]Career, len(ranked))
	for i, p := range ranked {
		out[i] = Career{
			Rank:        i + 1,
			Label:       p.Label,
			Probability: p.Probability,
			Percent:     Percent(p.Probability),
		}
	}
	return out
}

// Percent formats a probability as a percentage with two decimals.
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// Model is the data returned by GET /api/v1/model.
type Model = predictor.Info
