package validators

import (
	"strconv"
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
)

// ToString returns the input unchanged
func ToString(raw string) (any, error) {
	return raw, nil
}

// ToBoolean parses true/false, 1/0, yes/no
func ToBoolean(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSettingsInvalid, "cannot convert %q to a boolean", raw)
	}
	return b, nil
}

// ToInteger parses a base 10 integer
func ToInteger(raw string) (any, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSettingsInvalid, "cannot convert %q to an integer", raw)
	}
	return i, nil
}

// ToFloat parses a floating point number
func ToFloat(raw string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSettingsInvalid, "cannot convert %q to a number", raw)
	}
	return f, nil
}

// ToArray splits on commas and converts every item
func ToArray(item Converter) Converter {
	return func(raw string) (any, error) {
		if strings.TrimSpace(raw) == "" {
			return []any{}, nil
		}
		parts := strings.Split(raw, ",")
		out := make([]any, 0, len(parts))
		for _, part := range parts {
			v, err := item(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}
