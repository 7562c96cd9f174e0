package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared across packages.
const (
	FieldModelID      = "model_id"
	FieldArtifact     = "artifact"
	FieldPredictionID = "prediction_id"
	FieldChannel      = "channel"
	FieldProvider     = "provider"
)

// StringField is an optional string field.
type StringField struct {
	Key   string
	Value string
}

// StringFields trims each pair and keeps those with both a key and a value.
func StringFields(fields ...StringField) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		key, value := strings.TrimSpace(f.Key), strings.TrimSpace(f.Value)
		if key == "" || value == "" {
			continue
		}
		out = append(out, zap.String(key, value))
	}
	return out
}

// WithFields attaches fields to l. A nil l becomes a no-op logger.
func WithFields(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// ModelFields describes a model artifact. Unknown values are left out, so a
// server without a model logs only the location.
func ModelFields(modelID, location string) []zap.Field {
	return StringFields(
		StringField{Key: FieldModelID, Value: modelID},
		StringField{Key: FieldArtifact, Value: location},
	)
}

func WithModelFields(l *zap.Logger, modelID, location string) *zap.Logger {
	return WithFields(l, ModelFields(modelID, location)...)
}

// PredictionFields identify one served prediction.
func PredictionFields(predictionID, channel, modelID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldPredictionID, Value: predictionID},
		StringField{Key: FieldChannel, Value: channel},
		StringField{Key: FieldModelID, Value: modelID},
	)
}

func WithPredictionFields(l *zap.Logger, predictionID, channel, modelID string) *zap.Logger {
	return WithFields(l, PredictionFields(predictionID, channel, modelID)...)
}
