package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
)

// Filter is a single cleaning step applied to a dataset before training.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, d *Dataset) (*Dataset, Step, error)
}

// Deps aggregates dependencies shared across all cleaning steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a cleaning step.
type Step struct {
	Name    string `json:"name"`
	Initial int    `json:"initial"`
	Dropped int    `json:"dropped"`
	Left    int    `json:"left"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// requirement is implemented by steps that training cannot run without.
type requirement interface {
	Required() bool
}

// DefaultFilters returns the cleaning steps in the order they run.
// derived_mismatch only runs in strict mode.
func DefaultFilters(strict bool) []Filter {
	derived := NewDerivedMismatch(DefaultAverageTolerance)
	if !strict {
		derived.Disable("strict mode is off")
	}
	return []Filter{NewMissingTarget(), NewOutOfRange(), derived}
}

// Filters returns the default cleaning steps with the named ones disabled.
func Filters(strict bool, skip []string) ([]Filter, error) {
	steps := DefaultFilters(strict)
	var errs []error
	for _, name := range skip {
		if err := DisableByName(steps, name, "skipped on request"); err != nil {
			errs = append(errs, err)
		}
	}
	return steps, errors.Join(errs...)
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
// It fails for unknown names and for required steps.
func DisableByName(steps []Filter, name, reason string) error {
	name = strings.TrimSpace(name)
	for _, step := range steps {
		if step.Name() != name {
			continue
		}
		if r, ok := step.(requirement); ok && r.Required() {
			return fmt.Errorf("cleaning step %q cannot be skipped", name)
		}
		step.Disable(reason)
		return nil
	}
	return fmt.Errorf("unknown cleaning step %q", name)
}

// Run executes the supplied filters sequentially. It fails when no rows survive.
func Run(ctx context.Context, deps Deps, steps []Filter, d *Dataset) (*Dataset, []Step, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var report []Step
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if !step.IsEnabled() {
			logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, d)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
		info.Name = step.Name()

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		report = append(report, info)
		d = next
	}

	if d.Len() == 0 {
		return nil, report, apperrors.NewTrainingDataInvalid("no rows left after cleaning", nil)
	}
	return d, report, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}
		statuses = append(statuses, Status{Name: step.Name(), Enabled: step.IsEnabled()})
	}
	return statuses
}

// keep returns a dataset holding the records for which fn returns true, and
// the line numbers of the rest.
func keep(d *Dataset, fn func(Record) bool) (*Dataset, []int) {
	out := &Dataset{Source: d.Source, Records: make([]Record, 0, len(d.Records))}
	var dropped []int
	for _, r := range d.Records {
		if fn(r) {
			out.Records = append(out.Records, r)
			continue
		}
		dropped = append(dropped, r.Line)
	}
	return out, dropped
}

type missingTargetFilter struct{}

// NewMissingTarget creates a filter that removes rows without a target value.
func NewMissingTarget() Filter {
	return &missingTargetFilter{}
}

func (f *missingTargetFilter) Name() string { return "missing_target" }

// Disable is ignored: rows without a target cannot be encoded.
func (f *missingTargetFilter) Disable(string) {}

func (f *missingTargetFilter) IsEnabled() bool { return true }

func (f *missingTargetFilter) Required() bool { return true }

func (f *missingTargetFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Reason: "required"}
}

func (f *missingTargetFilter) Apply(_ context.Context, deps Deps, d *Dataset) (*Dataset, Step, error) {
	initial := d.Len()
	out, dropped := keep(d, func(r Record) bool { return strings.TrimSpace(r.Target) != "" })
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding rows without a target",
			zap.Ints("lines", dropped),
			zap.Int("rows_left", out.Len()),
		)
	}
	return out, Step{Initial: initial, Dropped: len(dropped), Left: out.Len()}, nil
}

type outOfRangeFilter struct {
	disabled bool
	reason   string
}

// NewOutOfRange creates a filter that removes rows violating the declared field ranges.
func NewOutOfRange() Filter {
	return &outOfRangeFilter{}
}

func (f *outOfRangeFilter) Name() string { return "out_of_range" }

func (f *outOfRangeFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *outOfRangeFilter) IsEnabled() bool { return !f.disabled }

func (f *outOfRangeFilter) Apply(_ context.Context, deps Deps, d *Dataset) (*Dataset, Step, error) {
	initial := d.Len()
	out, dropped := keep(d, func(r Record) bool {
		err := r.Profile.Validate()
		if err != nil && deps.Logger != nil {
			deps.Logger.Debug("row out of range", zap.Int("line", r.Line), zap.Error(err))
		}
		return err == nil
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding rows with out of range values",
			zap.Ints("lines", dropped),
			zap.Int("rows_left", out.Len()),
		)
	}
	return out, Step{Initial: initial, Dropped: len(dropped), Left: out.Len()}, nil
}

func (f *outOfRangeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

// DefaultAverageTolerance is how far a supplied average may drift from total/7.
const DefaultAverageTolerance = 0.01

type derivedMismatchFilter struct {
	disabled  bool
	reason    string
	tolerance float64
}

// NewDerivedMismatch creates a filter that removes rows whose supplied
// total_score or average_score disagree with their subject scores.
func NewDerivedMismatch(tolerance float64) Filter {
	return &derivedMismatchFilter{tolerance: tolerance}
}

func (f *derivedMismatchFilter) Name() string { return "derived_mismatch" }

func (f *derivedMismatchFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *derivedMismatchFilter) IsEnabled() bool { return !f.disabled }

func (f *derivedMismatchFilter) Apply(_ context.Context, deps Deps, d *Dataset) (*Dataset, Step, error) {
	initial := d.Len()
	out, dropped := keep(d, func(r Record) bool {
		total := 0
		for _, s := range r.Profile.Scores() {
			total += s
		}
		if r.SuppliedTotal != nil && *r.SuppliedTotal != float64(total) {
			return false
		}
		if r.SuppliedAverage != nil && math.Abs(*r.SuppliedAverage-float64(total)/7.0) > f.tolerance {
			return false
		}
		return true
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding rows with inconsistent derived scores",
			zap.Ints("lines", dropped),
			zap.Int("rows_left", out.Len()),
		)
	}
	return out, Step{Initial: initial, Dropped: len(dropped), Left: out.Len()}, nil
}

func (f *derivedMismatchFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"tolerance": strconv.FormatFloat(f.tolerance, 'f', -1, 64)},
	}
}
