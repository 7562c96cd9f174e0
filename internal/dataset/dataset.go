// Package dataset reads labelled training data and cleans it before fitting.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/features"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

// DefaultTargetColumn names the label column when none is configured.
const DefaultTargetColumn = "target"

// Record is one labelled training row.
type Record struct {
	Line    int
	Profile profile.StudentProfile
	Target  string

	// SuppliedTotal and SuppliedAverage hold the derived columns found in the
	// file, if any. Training always recomputes them from the subject scores.
	SuppliedTotal   *float64
	SuppliedAverage *float64
}

// Dataset is an ordered collection of records.
type Dataset struct {
	Source  string
	Records []Record
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Matrix builds feature rows through the same builder used at inference time.
func (d *Dataset) Matrix() [][]float64 {
	X := make([][]float64, len(d.Records))
	for i, r := range d.Records {
		X[i] = features.Build(r.Profile).Values()
	}
	return X
}

// Targets returns the raw target values in record order.
func (d *Dataset) Targets() []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Target
	}
	return out
}

// Options control how a CSV file is read.
type Options struct {
	TargetColumn string
}

// LoadFile opens path and reads it with Load.
func LoadFile(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewTrainingDataInvalid(fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	d, err := Load(f, opts)
	if err != nil {
		return nil, err
	}
	d.Source = path
	return d, nil
}

var (
	baseColumns = []string{
		"gender",
		"part_time_job",
		"absence_days",
		"extracurricular_activities",
		"weekly_self_study_hours",
		"math_score",
		"history_score",
		"physics_score",
		"chemistry_score",
		"biology_score",
		"english_score",
		"geography_score",
	}
	derivedColumns = []string{"total_score", "average_score"}
)

// Load parses CSV data with a header row. The twelve base columns and the
// target column are required; total_score and average_score are optional.
// Other columns are ignored.
func Load(r io.Reader, opts Options) (*Dataset, error) {
	target := strings.TrimSpace(opts.TargetColumn)
	if target == "" {
		target = DefaultTargetColumn
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewTrainingDataInvalid("file is empty", nil)
	}
	if err != nil {
		return nil, apperrors.NewTrainingDataInvalid("cannot read header", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	var missing []string
	for _, c := range append(append([]string{}, baseColumns...), target) {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewTrainingDataInvalid("missing columns: "+strings.Join(missing, ", "), nil)
	}

	d := &Dataset{}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewTrainingDataInvalid(fmt.Sprintf("line %d", line), err)
		}

		rec, err := parseRow(row, index, target)
		if err != nil {
			return nil, apperrors.NewTrainingDataInvalid(fmt.Sprintf("line %d: %v", line, err), nil)
		}
		rec.Line = line
		d.Records = append(d.Records, rec)
	}

	if len(d.Records) == 0 {
		return nil, apperrors.NewTrainingDataInvalid("file has no data rows", nil)
	}
	return d, nil
}

func parseRow(row []string, index map[string]int, target string) (Record, error) {
	cell := func(name string) string {
		return strings.TrimSpace(row[index[name]])
	}

	var rec Record
	var err error
	p := &rec.Profile

	if p.Gender, err = parseGender(cell("gender")); err != nil {
		return rec, err
	}
	p.PartTimeJob = profile.EncodeFlag(cell("part_time_job")) == 1
	p.ExtracurricularActivities = profile.EncodeFlag(cell("extracurricular_activities")) == 1

	if p.WeeklySelfStudyHours, err = parseNumber("weekly_self_study_hours", cell("weekly_self_study_hours")); err != nil {
		return rec, err
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"absence_days", &p.AbsenceDays},
		{"math_score", &p.MathScore},
		{"history_score", &p.HistoryScore},
		{"physics_score", &p.PhysicsScore},
		{"chemistry_score", &p.ChemistryScore},
		{"biology_score", &p.BiologyScore},
		{"english_score", &p.EnglishScore},
		{"geography_score", &p.GeographyScore},
	}
	for _, f := range ints {
		if *f.dst, err = parseWhole(f.name, cell(f.name)); err != nil {
			return rec, err
		}
	}

	for _, name := range derivedColumns {
		if _, ok := index[name]; !ok || cell(name) == "" {
			continue
		}
		v, err := parseNumber(name, cell(name))
		if err != nil {
			return rec, err
		}
		if name == "total_score" {
			rec.SuppliedTotal = &v
		} else {
			rec.SuppliedAverage = &v
		}
	}

	rec.Target = cell(target)
	return rec, nil
}

func parseGender(s string) (string, error) {
	switch strings.ToLower(s) {
	case "1", "1.0", profile.GenderFemale, "f":
		return profile.GenderFemale, nil
	case "0", "0.0", profile.GenderMale, "m":
		return profile.GenderMale, nil
	}
	return "", fmt.Errorf("gender: unrecognized value %q", s)
}

func parseNumber(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return v, nil
}

func parseWhole(name, s string) (int, error) {
	v, err := parseNumber(name, s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%s: %q is not a whole number", name, s)
	}
	return int(v), nil
}
