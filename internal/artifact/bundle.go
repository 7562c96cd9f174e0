// Package artifact persists trained pipelines together with the feature
// schema and class labels they were trained on.
package artifact

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/classifier"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/features"
)

const (
	// Format identifies bundle documents.
	Format = "aspirations-pipeline"
	// Version is the bundle layout version written by this build.
	Version = 1
)

// Bundle is the serialized form of a trained pipeline.
type Bundle struct {
	Format    string                     `json:"format"`
	Version   int                        `json:"version"`
	ID        string                     `json:"id"`
	TrainedAt time.Time                  `json:"trained_at"`
	Schema    features.Schema            `json:"schema"`
	Labels    []string                   `json:"labels"`
	Scaler    *classifier.StandardScaler `json:"scaler"`
	Forest    *classifier.Forest         `json:"forest"`
	Metrics   *classifier.Report         `json:"metrics,omitempty"`
	Params    classifier.ForestParams    `json:"params"`
	TrainRows int                        `json:"train_rows"`
	TestRows  int                        `json:"test_rows"`
}

// New wraps a fitted pipeline into a bundle with a fresh identifier.
func New(schema features.Schema, labels []string, p *classifier.Pipeline, params classifier.ForestParams) *Bundle {
	return &Bundle{
		Format:    Format,
		Version:   Version,
		ID:        uuid.NewString(),
		TrainedAt: time.Now().UTC(),
		Schema:    append(features.Schema(nil), schema...),
		Labels:    append([]string(nil), labels...),
		Scaler:    p.Scaler,
		Forest:    p.Forest,
		Params:    params,
	}
}

// Pipeline returns the scoring pipeline held by the bundle.
func (b *Bundle) Pipeline() *classifier.Pipeline {
	return &classifier.Pipeline{Scaler: b.Scaler, Forest: b.Forest}
}

// Validate checks that labels, schema and pipeline agree with each other.
func (b *Bundle) Validate() error {
	if b.Format != Format {
		return fmt.Errorf("unexpected format %q", b.Format)
	}
	if b.Version != Version {
		return fmt.Errorf("unsupported version %d", b.Version)
	}
	if len(b.Schema) == 0 {
		return errors.New("schema is empty")
	}
	if len(b.Labels) == 0 {
		return errors.New("labels are empty")
	}

	seen := make(map[string]struct{}, len(b.Labels))
	for i, l := range b.Labels {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("label %d is empty", i)
		}
		if _, dup := seen[l]; dup {
			return fmt.Errorf("label %q is duplicated", l)
		}
		seen[l] = struct{}{}
	}

	if err := b.Pipeline().Validate(len(b.Schema)); err != nil {
		return err
	}
	if b.Forest.NClasses != len(b.Labels) {
		return fmt.Errorf("forest predicts %d classes but %d labels are stored", b.Forest.NClasses, len(b.Labels))
	}
	return nil
}

// Encode writes b as JSON, gzip-compressed when compress is set.
func Encode(w io.Writer, b *Bundle, compress bool) error {
	if !compress {
		enc := json.NewEncoder(w)
		return enc.Encode(b)
	}

	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(b); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Marshal encodes b into memory.
func Marshal(b *Bundle, compress bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, b, compress); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes and validates a bundle. Gzip input is detected by its magic bytes.
func Unmarshal(data []byte) (*Bundle, error) {
	raw, err := Inflate(data)
	if err != nil {
		return nil, err
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}
	return &b, nil
}

// Inflate returns the plain JSON document, decompressing gzip input.
func Inflate(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	return raw, nil
}

// Compressed reports whether location should be written gzip-compressed.
func Compressed(location string) bool {
	return strings.HasSuffix(strings.ToLower(location), ".gz")
}
