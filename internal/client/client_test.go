package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

func TestPredict(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, api.PredictionsPath, r.URL.Path)

		var sp profile.StudentProfile
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sp))
		assert.Equal(t, 97, sp.PhysicsScore)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.Success[api.Prediction]{
			Success: true,
			Message: "prediction created",
			Data: api.Prediction{
				ID:      "p-1",
				ModelID: "m-1",
				Careers: []api.Career{{Rank: 1, Label: "Doctor", Probability: 0.4, Percent: "40.00%"}},
			},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", 0)
	require.NoError(t, err)

	got, err := c.Predict(context.Background(), profile.Default())
	require.NoError(t, err)
	assert.Equal(t, "m-1", got.ModelID)
	require.Len(t, got.Careers, 1)
	assert.Equal(t, "Doctor", got.Careers[0].Label)
}

func TestPredictClassifiedError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(api.Failure{
			Message: "input out of range",
			Code:    string(apperrors.CodeInputOutOfRange),
			Fields:  []apperrors.FieldError{{Field: "math_score", Message: "must be at most 100"}},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, 0)
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), profile.Default())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInputOutOfRange))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "math_score", appErr.Fields[0].Field)
}

func TestModelUnclassifiedError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, 0)
	require.NoError(t, err)

	_, err = c.Model(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestModel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.ModelPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.Success[api.Model]{
			Success: true,
			Data:    api.Model{ID: "m-1", Labels: []string{"Doctor", "Lawyer"}, Trees: 200},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, 0)
	require.NoError(t, err)

	info, err := c.Model(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "m-1", info.ID)
	assert.Equal(t, 200, info.Trees)
}

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := New("  ", 0)
	assert.Error(t, err)
}
