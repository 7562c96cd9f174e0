package artifact

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

// Summary describes an artifact without decoding its forest. It is filled
// field by field, so a damaged or newer artifact still yields what it can.
type Summary struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	TrainedAt time.Time `json:"trained_at"`
	Features  []string  `json:"features"`
	Labels    []string  `json:"labels"`
	Trees     int       `json:"trees"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	TrainRows int       `json:"train_rows"`
	TestRows  int       `json:"test_rows"`
	Valid     bool      `json:"valid"`
	Problem   string    `json:"problem,omitempty"`
}

// Inspect summarizes raw artifact bytes, plain or gzip-compressed.
func Inspect(data []byte) (*Summary, error) {
	raw, err := Inflate(data)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("artifact is not a JSON document")
	}

	doc := gjson.ParseBytes(raw)
	s := &Summary{
		Format:    doc.Get("format").String(),
		Version:   int(doc.Get("version").Int()),
		ID:        doc.Get("id").String(),
		TrainedAt: doc.Get("trained_at").Time(),
		Trees:     int(doc.Get("forest.trees.#").Int()),
		TrainRows: int(doc.Get("train_rows").Int()),
		TestRows:  int(doc.Get("test_rows").Int()),
	}
	for _, name := range doc.Get("schema.#.name").Array() {
		s.Features = append(s.Features, name.String())
	}
	for _, label := range doc.Get("labels").Array() {
		s.Labels = append(s.Labels, label.String())
	}
	if acc := doc.Get("metrics.accuracy"); acc.Exists() {
		v := acc.Float()
		s.Accuracy = &v
	}

	if _, err := Unmarshal(raw); err != nil {
		s.Problem = err.Error()
	} else {
		s.Valid = true
	}
	return s, nil
}
