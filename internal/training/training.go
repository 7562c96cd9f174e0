// Package training fits the career pipeline from a labelled CSV file and
// persists it as an artifact.
package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/artifact"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/classifier"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/dataset"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/features"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/logger"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/metrics"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/registry"
)

// Config describes one training run.
type Config struct {
	DataPath     string                  `mapstructure:"data"`
	TargetColumn string                  `mapstructure:"target_column"`
	Labels       []string                `mapstructure:"labels"`
	TestSize     float64                 `mapstructure:"test_size"`
	Seed         uint64                  `mapstructure:"seed"`
	Strict       bool                    `mapstructure:"strict"`
	SkipSteps    []string                `mapstructure:"skip_steps"`
	Forest       classifier.ForestParams `mapstructure:"forest"`
}

// DefaultConfig reproduces the reference training setup.
func DefaultConfig() Config {
	return Config{
		DataPath:     "train_data.csv",
		TargetColumn: dataset.DefaultTargetColumn,
		Labels:       append([]string(nil), dataset.DefaultLabels...),
		TestSize:     0.2,
		Seed:         42,
		Forest:       classifier.DefaultForestParams(),
	}
}

// Recorder persists a summary of each run.
type Recorder interface {
	Record(ctx context.Context, run *registry.TrainingRun) error
}

// Trainer runs the training procedure.
type Trainer struct {
	cfg      Config
	store    artifact.Store
	logger   *zap.Logger
	metrics  *metrics.Metrics
	recorder Recorder
	now      func() time.Time
}

// Option customizes a Trainer.
type Option func(*Trainer)

func WithLogger(l *zap.Logger) Option {
	return func(t *Trainer) { t.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Trainer) { t.metrics = m }
}

// WithRecorder records every run, successful or not.
func WithRecorder(r Recorder) Option {
	return func(t *Trainer) { t.recorder = r }
}

func NewTrainer(cfg Config, store artifact.Store, opts ...Option) *Trainer {
	t := &Trainer{cfg: cfg, store: store, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// DataAvailable reports whether the training file exists.
func (t *Trainer) DataAvailable() bool {
	info, err := os.Stat(t.cfg.DataPath)
	return err == nil && info.Mode().IsRegular()
}

// Report summarizes a finished run.
type Report struct {
	ModelID    string            `json:"model_id"`
	Location   string            `json:"location"`
	DataSource string            `json:"data_source"`
	Rows       int               `json:"rows"`
	TrainRows  int               `json:"train_rows"`
	TestRows   int               `json:"test_rows"`
	Labels     []string          `json:"labels"`
	Steps      []dataset.Step    `json:"steps"`
	Cleaning   []dataset.Status  `json:"cleaning"`
	Evaluation classifier.Report `json:"evaluation"`
	Duration   time.Duration     `json:"duration"`
}

// String renders the accuracy and the per-class table.
func (r *Report) String() string {
	var b strings.Builder
	if len(r.Cleaning) > 0 {
		b.WriteString("Cleaning steps:\n")
		for _, s := range r.Cleaning {
			fmt.Fprintf(&b, "  %-18s %s\n", s.Name, r.stepOutcome(s))
		}
	}
	fmt.Fprintf(&b, "Test accuracy: %.4f\n", r.Evaluation.Accuracy)
	b.WriteString("Classification report:\n")
	b.WriteString(r.Evaluation.String())
	fmt.Fprintf(&b, "Saved pipeline to %s\n", r.Location)
	return b.String()
}

func (r *Report) stepOutcome(s dataset.Status) string {
	if !s.Enabled {
		return "skipped (" + s.Reason + ")"
	}
	for _, step := range r.Steps {
		if step.Name == s.Name {
			return fmt.Sprintf("dropped %d of %d rows", step.Dropped, step.Initial)
		}
	}
	return "ran"
}

// Run trains a pipeline and saves it to location. A failed run leaves any
// existing artifact at location untouched.
func (t *Trainer) Run(ctx context.Context, location string) (*Report, error) {
	started := t.now()
	log := t.logger.With(zap.String(logger.FieldArtifact, location), zap.String("data", t.cfg.DataPath))

	report, err := t.run(ctx, location, log)

	var accuracy float64
	if report != nil {
		report.Duration = t.now().Sub(started)
		accuracy = report.Evaluation.Accuracy
	}
	t.metrics.ObserveTraining(started, accuracy, err)
	t.record(ctx, log, location, started, report, err)

	if err != nil {
		log.Error("training failed", zap.Error(err))
		return nil, err
	}
	log.Info("training completed",
		zap.String(logger.FieldModelID, report.ModelID),
		zap.Float64("accuracy", report.Evaluation.Accuracy),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (t *Trainer) run(ctx context.Context, location string, log *zap.Logger) (*Report, error) {
	d, err := dataset.LoadFile(t.cfg.DataPath, dataset.Options{TargetColumn: t.cfg.TargetColumn})
	if err != nil {
		return nil, err
	}
	log.Info("training data loaded", zap.Int("rows", d.Len()))

	filters, err := dataset.Filters(t.cfg.Strict, t.cfg.SkipSteps)
	if err != nil {
		return nil, err
	}
	d, steps, err := dataset.Run(ctx, dataset.Deps{Logger: log}, filters, d)
	if err != nil {
		return nil, err
	}

	y, labels, err := dataset.EncodeTargets(d.Targets(), t.cfg.Labels)
	if err != nil {
		return nil, apperrors.NewTrainingDataInvalid("cannot encode targets", err)
	}
	if len(labels) < 2 {
		return nil, apperrors.NewTrainingDataInvalid(fmt.Sprintf("need at least two classes, found %d", len(labels)), nil)
	}

	X := d.Matrix()
	trainIdx, testIdx, err := classifier.TrainTestSplit(len(X), t.cfg.TestSize, t.cfg.Seed)
	if err != nil {
		return nil, apperrors.NewTrainingDataInvalid("cannot split data", err)
	}
	Xtrain, ytrain := classifier.Take(X, y, trainIdx)
	Xtest, ytest := classifier.Take(X, y, testIdx)

	log.Info("training pipeline",
		zap.Int("train_rows", len(Xtrain)),
		zap.Int("test_rows", len(Xtest)),
		zap.Int("classes", len(labels)),
		zap.Int("trees", t.cfg.Forest.Trees),
	)

	pipeline, err := classifier.FitPipeline(ctx, Xtrain, ytrain, len(labels), t.cfg.Forest)
	if err != nil {
		return nil, fmt.Errorf("fit pipeline: %w", err)
	}

	predicted, err := pipeline.PredictAll(Xtest)
	if err != nil {
		return nil, fmt.Errorf("evaluate pipeline: %w", err)
	}
	evaluation := classifier.Evaluate(labels, ytest, predicted)

	b := artifact.New(features.DefaultSchema, labels, pipeline, t.cfg.Forest)
	b.TrainedAt = t.now().UTC()
	b.Metrics = &evaluation
	b.TrainRows = len(Xtrain)
	b.TestRows = len(Xtest)

	if err := artifact.Save(ctx, t.store, location, b); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}

	return &Report{
		ModelID:    b.ID,
		Location:   location,
		DataSource: t.cfg.DataPath,
		Rows:       d.Len(),
		TrainRows:  len(Xtrain),
		TestRows:   len(Xtest),
		Labels:     labels,
		Steps:      steps,
		Cleaning:   dataset.Describe(filters),
		Evaluation: evaluation,
	}, nil
}

func (t *Trainer) record(ctx context.Context, log *zap.Logger, location string, started time.Time, report *Report, runErr error) {
	if t.recorder == nil {
		return
	}

	params, err := json.Marshal(t.cfg.Forest)
	if err != nil {
		params = []byte("{}")
	}

	run := &registry.TrainingRun{
		Location:   location,
		DataSource: t.cfg.DataPath,
		Params:     string(params),
		Status:     registry.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: t.now(),
	}
	if report != nil {
		run.ModelID = report.ModelID
		run.Rows = report.Rows
		run.TrainRows = report.TrainRows
		run.TestRows = report.TestRows
		run.Classes = len(report.Labels)
		run.Accuracy = report.Evaluation.Accuracy
		run.MacroF1 = report.Evaluation.MacroAvg.F1
	}
	if runErr != nil {
		run.Status = registry.StatusFailed
		run.Error = runErr.Error()
	}

	if err := t.recorder.Record(ctx, run); err != nil {
		log.Warn("recording training run failed", zap.Error(err))
	}
}

// EnsureModel makes sure an artifact exists at location before serving.
// It returns a nil report when the artifact is already present, trains one
// when it is missing and training data is available, and reports
// ModelUnavailable otherwise.
func EnsureModel(ctx context.Context, store artifact.Store, location string, trainer *Trainer) (*Report, error) {
	exists, err := store.Exists(ctx, location)
	if err != nil {
		return nil, apperrors.NewModelUnavailable(location, err)
	}
	if exists {
		return nil, nil
	}

	if trainer == nil {
		return nil, apperrors.NewModelUnavailable(location, fmt.Errorf("%w and training is disabled", artifact.ErrNotFound))
	}
	if !trainer.DataAvailable() {
		return nil, apperrors.NewModelUnavailable(location,
			fmt.Errorf("%w and training data %s is missing", artifact.ErrNotFound, trainer.cfg.DataPath))
	}

	report, err := trainer.Run(ctx, location)
	if err != nil {
		return nil, apperrors.NewModelUnavailable(location, err)
	}
	return report, nil
}

// IsMissingData reports whether err was caused by an absent training file.
func IsMissingData(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
