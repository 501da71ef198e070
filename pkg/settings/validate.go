package settings

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/validators"
)

// ValidationError is a failed validator at a settings path
type ValidationError struct {
	Path     string
	Value    any
	Required bool
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors collects every failure found in one validation pass
type ValidationErrors []*ValidationError

// OnlyRequired reports whether every failure is a missing required value
func (errs ValidationErrors) OnlyRequired() bool {
	for _, e := range errs {
		if !e.Required {
			return false
		}
	}
	return true
}

// Paths returns the failing paths
func (errs ValidationErrors) Paths() []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Path)
	}
	return out
}

// Err converts the failures into a single RocError, nil when there are none
func (errs ValidationErrors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	code := errors.ErrSettingsInvalid
	if errs.OnlyRequired() {
		code = errors.ErrSettingsRequired
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	return errors.Newf(code, "settings failed validation:\n  %s", strings.Join(lines, "\n  ")).
		WithDetail("paths", errs.Paths())
}

// Validate runs every validator in the meta tree against the value at the
// same path in the settings tree. Failures are returned in path order.
func Validate(tree Tree, meta *Meta) ValidationErrors {
	var errs ValidationErrors
	if meta == nil {
		return nil
	}
	meta.Walk(func(path string, node *Meta) {
		if node.Validator == nil {
			return
		}
		value := Get(tree, path)
		if err := node.Validator.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Path:     path,
				Value:    value,
				Required: validators.IsRequiredFailure(err),
				Err:      err,
			})
		}
	})
	return errs
}

// SetString converts raw with the converter described by the validator at
// path and places the result in a copy of the tree. Paths without a
// validator keep the raw string.
func SetString(tree Tree, meta *Meta, path, raw string) (Tree, error) {
	var value any = raw
	if node := meta.Lookup(path); node != nil && node.Validator != nil {
		info := node.Validator.Describe()
		if info.Converter == nil {
			return nil, errors.Newf(errors.ErrSettingsInvalid, "%s (%s) cannot be set from a string", path, info.Type).
				WithDetail("path", path)
		}
		converted, err := info.Converter(raw)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSettingsInvalid, "invalid value for %s", path).
				WithDetail("path", path)
		}
		if err := node.Validator.Validate(converted); err != nil {
			return nil, errors.Wrapf(err, errors.ErrSettingsInvalid, "invalid value for %s", path).
				WithDetail("path", path)
		}
		value = converted
	}
	return Set(tree, path, value), nil
}
