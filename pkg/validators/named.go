package validators

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/registry"
)

const requiredPrefix = "required:"

var named = registry.New[Validator]()

func init() {
	registry.MustRegister(named, "isAny", IsAny)
	registry.MustRegister(named, "isString", IsString)
	registry.MustRegister(named, "isBoolean", IsBoolean)
	registry.MustRegister(named, "isInteger", IsInteger)
	registry.MustRegister(named, "isFloat", IsFloat)
	registry.MustRegister(named, "isPath", IsPath)
	registry.MustRegister(named, "isArray", IsArray(IsAny))
	registry.MustRegister(named, "isObject", IsObject(nil))
	registry.MustRegister(named, "isUnmanagedObject", IsObject(nil, Unmanaged()))
}

// Register makes a validator available to manifests under the given name
func Register(name string, v Validator) error {
	return named.Register(name, v)
}

// Names lists the named validators
func Names() []string {
	return named.List()
}

// Parse resolves a manifest validator reference.
//
// Supported forms are a registered name ("isString"), a name prefixed with
// "required:" and a regular expression between slashes.
func Parse(ref string) (Validator, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, requiredPrefix) {
		inner, err := Parse(strings.TrimPrefix(ref, requiredPrefix))
		if err != nil {
			return nil, err
		}
		return Required(inner), nil
	}

	if len(ref) >= 2 && strings.HasPrefix(ref, "/") && strings.HasSuffix(ref, "/") {
		re, err := regexp.Compile(ref[1 : len(ref)-1])
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid validator pattern %s", ref)
		}
		return Pattern(re), nil
	}

	if strings.HasPrefix(ref, "isArray(") && strings.HasSuffix(ref, ")") {
		inner, err := Parse(ref[len("isArray(") : len(ref)-1])
		if err != nil {
			return nil, err
		}
		return IsArray(inner), nil
	}

	v, err := named.Get(ref)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "unknown validator %q", ref)
	}
	return v, nil
}
