package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
)

// Converter turns a raw string (command line or environment) into a typed value
type Converter func(raw string) (any, error)

// Info is what a validator reports about the values it accepts
type Info struct {
	// Type is a human readable type name, e.g. "integer" or "array<string>"
	Type string
	// Required is true when an absent value is a failure
	Required bool
	// Unmanaged marks object values that are treated as opaque leaves
	Unmanaged bool
	// Converter parses string input for this type, nil when not convertible
	Converter Converter
}

// Validator validates a settings value and describes itself
type Validator interface {
	Validate(value any) error
	Describe() Info
}

type funcValidator struct {
	info Info
	fn   func(value any) error
}

func (v *funcValidator) Validate(value any) error {
	if value == nil {
		return nil
	}
	return v.fn(value)
}

func (v *funcValidator) Describe() Info { return v.info }

// New creates a validator from a check function. The check is never called
// with a nil value; absent values are accepted unless wrapped in Required.
func New(info Info, check func(value any) error) Validator {
	return &funcValidator{info: info, fn: check}
}

func invalid(format string, args ...any) error {
	return errors.Newf(errors.ErrSettingsInvalid, format, args...)
}

var (
	// IsAny accepts every value
	IsAny = New(Info{Type: "any", Converter: ToString}, func(any) error { return nil })

	// IsString accepts strings
	IsString = New(Info{Type: "string", Converter: ToString}, func(value any) error {
		if _, ok := value.(string); !ok {
			return invalid("expected a string, got %s", typeName(value))
		}
		return nil
	})

	// IsBoolean accepts booleans
	IsBoolean = New(Info{Type: "boolean", Converter: ToBoolean}, func(value any) error {
		if _, ok := value.(bool); !ok {
			return invalid("expected a boolean, got %s", typeName(value))
		}
		return nil
	})

	// IsInteger accepts any integer kind and floats without a fraction
	IsInteger = New(Info{Type: "integer", Converter: ToInteger}, func(value any) error {
		if _, ok := asInt64(value); !ok {
			return invalid("expected an integer, got %s", typeName(value))
		}
		return nil
	})

	// IsFloat accepts any numeric value
	IsFloat = New(Info{Type: "float", Converter: ToFloat}, func(value any) error {
		if _, ok := asFloat64(value); !ok {
			return invalid("expected a number, got %s", typeName(value))
		}
		return nil
	})

	// IsPath accepts non-empty strings that form a clean filesystem path
	IsPath = New(Info{Type: "path", Converter: ToString}, func(value any) error {
		s, ok := value.(string)
		if !ok {
			return invalid("expected a path, got %s", typeName(value))
		}
		if s == "" || strings.ContainsRune(s, 0) {
			return invalid("expected a path, got %q", s)
		}
		return nil
	})
)

// IsArray accepts slices whose elements all pass the element validator
func IsArray(element Validator) Validator {
	elem := element.Describe()
	info := Info{Type: "array<" + elem.Type + ">"}
	if elem.Converter != nil {
		info.Converter = ToArray(elem.Converter)
	}
	return New(info, func(value any) error {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return invalid("expected an array, got %s", typeName(value))
		}
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			if item == nil {
				return invalid("array item %d is empty", i)
			}
			if err := element.Validate(item); err != nil {
				return errors.Wrapf(err, errors.ErrSettingsInvalid, "array item %d", i)
			}
		}
		return nil
	})
}

// ObjectOption configures IsObject
type ObjectOption func(*Info)

// Unmanaged marks the object as opaque: structure checks stop descending at it
func Unmanaged() ObjectOption {
	return func(info *Info) { info.Unmanaged = true }
}

// IsObject accepts string keyed maps whose values pass the value validator.
// A nil value validator accepts any values.
func IsObject(values Validator, opts ...ObjectOption) Validator {
	info := Info{Type: "object"}
	if values != nil {
		info.Type = "object<" + values.Describe().Type + ">"
	}
	for _, opt := range opts {
		opt(&info)
	}
	return New(info, func(value any) error {
		m, ok := value.(map[string]any)
		if !ok {
			return invalid("expected an object, got %s", typeName(value))
		}
		if values == nil {
			return nil
		}
		for key, item := range m {
			if err := values.Validate(item); err != nil {
				return errors.Wrapf(err, errors.ErrSettingsInvalid, "object key %q", key)
			}
		}
		return nil
	})
}

// OneOf accepts values passing at least one of the validators
func OneOf(options ...Validator) Validator {
	names := make([]string, 0, len(options))
	var converter Converter
	for _, opt := range options {
		info := opt.Describe()
		names = append(names, info.Type)
		if converter == nil {
			converter = info.Converter
		}
	}
	info := Info{Type: strings.Join(names, " | "), Converter: converter}
	return New(info, func(value any) error {
		for _, opt := range options {
			if opt.Validate(value) == nil {
				return nil
			}
		}
		return invalid("expected one of %s, got %s", info.Type, typeName(value))
	})
}

// Pattern accepts strings matching the regular expression
func Pattern(re *regexp.Regexp) Validator {
	return New(Info{Type: "/" + re.String() + "/", Converter: ToString}, func(value any) error {
		s, ok := value.(string)
		if !ok {
			return invalid("expected a string matching /%s/, got %s", re, typeName(value))
		}
		if !re.MatchString(s) {
			return invalid("%q does not match /%s/", s, re)
		}
		return nil
	})
}

type requiredValidator struct {
	inner Validator
}

// Required makes an absent value a failure with code SETTINGS_REQUIRED
func Required(inner Validator) Validator {
	if inner == nil {
		inner = IsAny
	}
	return &requiredValidator{inner: inner}
}

func (v *requiredValidator) Validate(value any) error {
	if value == nil {
		return errors.New(errors.ErrSettingsRequired, "a value is required")
	}
	return v.inner.Validate(value)
}

func (v *requiredValidator) Describe() Info {
	info := v.inner.Describe()
	info.Required = true
	return info
}

// IsRequiredFailure reports whether the error only says a value is missing
func IsRequiredFailure(err error) bool {
	return errors.IsErrorCode(err, errors.ErrSettingsRequired)
}

func typeName(value any) string {
	if value == nil {
		return "nothing"
	}
	switch value.(type) {
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	}
	return fmt.Sprintf("%T", value)
}

func asInt64(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == float64(int64(f)) {
			return int64(f), true
		}
	}
	return 0, false
}

func asFloat64(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
