package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   []StringField
		want map[string]string
	}{
		"none": {want: map[string]string{}},
		"trimmed": {
			in:   []StringField{{Key: " artifact ", Value: " model.json "}},
			want: map[string]string{"artifact": "model.json"},
		},
		"blank value dropped": {
			in:   []StringField{{Key: FieldModelID, Value: "  "}, {Key: FieldChannel, Value: "api"}},
			want: map[string]string{FieldChannel: "api"},
		},
		"blank key dropped": {
			in:   []StringField{{Key: "", Value: "orphan"}},
			want: map[string]string{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := StringFields(tt.in...)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d fields, got %d", len(tt.want), len(got))
			}
			for _, f := range got {
				if tt.want[f.Key] != f.String {
					t.Fatalf("unexpected field %s=%q", f.Key, f.String)
				}
			}
		})
	}
}

func observed(t *testing.T, log func(l *zap.Logger)) map[string]any {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	log(zap.New(core))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	return entries[0].ContextMap()
}

func TestWithModelFields(t *testing.T) {
	t.Parallel()

	ctx := observed(t, func(l *zap.Logger) {
		WithModelFields(l, "", "s3://models/pipeline.json.gz").Warn("model unavailable")
	})
	if ctx[FieldArtifact] != "s3://models/pipeline.json.gz" {
		t.Fatalf("unexpected artifact field %v", ctx[FieldArtifact])
	}
	if _, ok := ctx[FieldModelID]; ok {
		t.Fatalf("expected no model id before a model is loaded")
	}
}

func TestWithPredictionFields(t *testing.T) {
	t.Parallel()

	ctx := observed(t, func(l *zap.Logger) {
		WithPredictionFields(l, "p-1", "web", "m-1").Debug("prediction served")
	})
	if ctx[FieldPredictionID] != "p-1" || ctx[FieldChannel] != "web" || ctx[FieldModelID] != "m-1" {
		t.Fatalf("unexpected fields %v", ctx)
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	if WithFields(nil) == nil || WithPredictionFields(nil, "p", "api", "m") == nil {
		t.Fatalf("expected a usable logger for nil input")
	}
}
