package profile

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Decode builds a profile from loosely typed input such as form values, JSON
// objects or config presets. Missing keys keep their zero value, so an absent
// checkbox decodes to false.
func Decode(input map[string]any) (StudentProfile, error) {
	var p StudentProfile

	cfg := &mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(flagHook, wholeNumberHook),
		WeaklyTypedInput: true,
		Result:           &p,
		TagName:          "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return p, fmt.Errorf("creating profile decoder: %w", err)
	}

	if err := decoder.Decode(normalize(input)); err != nil {
		return p, fmt.Errorf("decoding profile: %w", err)
	}

	p.Gender = strings.ToLower(strings.TrimSpace(p.Gender))
	return p, nil
}

// DecodeForm builds a profile from submitted form values.
func DecodeForm(values map[string][]string) (StudentProfile, error) {
	input := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		input[key] = vals[len(vals)-1]
	}
	return Decode(input)
}

// normalize trims string values so "  7 " still decodes as a number.
func normalize(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for k, v := range input {
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func flagHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Bool {
		return data, nil
	}
	return EncodeFlag(data) == 1, nil
}

func wholeNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}

	var f float64
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		f = reflect.ValueOf(data).Float()
	case reflect.String:
		s := data.(string)
		if s == "" {
			return data, nil
		}
		if _, err := strconv.Atoi(s); err == nil {
			return data, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}
		f = parsed
	default:
		return data, nil
	}

	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil, fmt.Errorf("%v is out of range", f)
	}
	return int(f), nil
}
