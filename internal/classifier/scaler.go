package classifier

import (
	"errors"
	"fmt"
	"math"
)

const machineEpsilon = 2.220446049250313e-16

// StandardScaler centers each column to zero mean and unit variance.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler learns per-column mean and population standard deviation.
// Constant columns get a scale of 1 so they transform to zero.
func FitScaler(X [][]float64) (*StandardScaler, error) {
	if len(X) == 0 {
		return nil, errors.New("cannot fit scaler on empty data")
	}
	width := len(X[0])
	mean := make([]float64, width)
	scale := make([]float64, width)

	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), width)
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(X))
	for j := range mean {
		mean[j] /= n
	}

	for _, row := range X {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		std := math.Sqrt(scale[j] / n)
		if std < 10*machineEpsilon {
			std = 1
		}
		scale[j] = std
	}

	return &StandardScaler{Mean: mean, Scale: scale}, nil
}

// Width is the number of columns the scaler was fitted on.
func (s *StandardScaler) Width() int {
	return len(s.Mean)
}

// Transform returns a scaled copy of row.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// TransformAll scales every row of X.
func (s *StandardScaler) TransformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Transform(row)
	}
	return out
}
