package dataset

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultLabels names integer-coded targets: code i is DefaultLabels[i].
var DefaultLabels = []string{
	"Lawyer",
	"Doctor",
	"Government Officer",
	"Artist",
	"Unknown",
	"Software Engineer",
	"Teacher",
	"Business Owner",
	"Scientist",
	"Banker",
	"Writer",
	"Accountant",
	"Designer",
	"Construction Engineer",
	"Game Developer",
	"Stock Investor",
	"Real Estate Developer",
}

// EncodeTargets maps raw targets to class indices and returns the label of each index.
//
// When every target is an integer code, classes are ordered by code and named
// from names (falling back to "class N" beyond its end). Otherwise targets are
// treated as label strings and ordered lexically.
func EncodeTargets(targets []string, names []string) ([]int, []string, error) {
	if len(targets) == 0 {
		return nil, nil, fmt.Errorf("no targets to encode")
	}

	codes := make([]int, len(targets))
	numeric := true
	for i, t := range targets {
		if strings.TrimSpace(t) == "" {
			return nil, nil, fmt.Errorf("target at row %d is empty", i)
		}
		c, err := parseCode(t)
		if err != nil {
			numeric = false
			break
		}
		codes[i] = c
	}

	if numeric {
		return encodeCodes(codes, names)
	}
	return encodeStrings(targets)
}

func parseCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not an integer code", s)
	}
	return int(f), nil
}

func encodeCodes(codes []int, names []string) ([]int, []string, error) {
	unique := slices.Clone(codes)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	pos := make(map[int]int, len(unique))
	labels := make([]string, len(unique))
	for i, c := range unique {
		pos[c] = i
		if c >= 0 && c < len(names) && strings.TrimSpace(names[c]) != "" {
			labels[i] = names[c]
		} else {
			labels[i] = fmt.Sprintf("class %d", c)
		}
	}
	if dup := firstDuplicate(labels); dup != "" {
		return nil, nil, fmt.Errorf("label %q is assigned to more than one code", dup)
	}

	y := make([]int, len(codes))
	for i, c := range codes {
		y[i] = pos[c]
	}
	return y, labels, nil
}

func encodeStrings(targets []string) ([]int, []string, error) {
	labels := make([]string, len(targets))
	for i, t := range targets {
		labels[i] = strings.TrimSpace(t)
	}
	labels = slices.Compact(slices.Sorted(slices.Values(labels)))

	pos := make(map[string]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	y := make([]int, len(targets))
	for i, t := range targets {
		y[i] = pos[strings.TrimSpace(t)]
	}
	return y, labels, nil
}

// CheckLabels rejects label lists that give the same name to two codes.
// Blank entries fall back to "class N" and are ignored.
func CheckLabels(names []string) error {
	named := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			named = append(named, n)
		}
	}
	if dup := firstDuplicate(named); dup != "" {
		return fmt.Errorf("label %q is listed more than once", dup)
	}
	return nil
}

func firstDuplicate(labels []string) string {
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			return l
		}
		seen[l] = struct{}{}
	}
	return ""
}
