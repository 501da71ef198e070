package hooks

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/validators"
)

type rawArgument struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Validator   string `mapstructure:"validator"`
}

type rawHook struct {
	Description string        `mapstructure:"description"`
	Arguments   []rawArgument `mapstructure:"arguments"`
	Returns     string        `mapstructure:"returns"`
	Callback    bool          `mapstructure:"callback"`
}

// FromMap decodes hook definitions from manifest form:
//
//	[hooks.build-started]
//	description = "Fired before bundling"
//	arguments = [{ name = "target", validator = "isString" }]
//	returns = "isString"
func FromMap(raw map[string]any) (Table, error) {
	table := make(Table, len(raw))
	for name, value := range raw {
		var rh rawHook
		if err := mapstructure.Decode(value, &rh); err != nil {
			return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "invalid hook %q", name)
		}

		hook := Hook{Description: rh.Description, HasCallback: rh.Callback}
		if rh.Returns != "" {
			v, err := validators.Parse(rh.Returns)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "invalid return validator for hook %q", name)
			}
			hook.ReturnValue = v
		}
		for _, ra := range rh.Arguments {
			arg := Argument{Name: ra.Name, Description: ra.Description}
			if ra.Validator != "" {
				v, err := validators.Parse(ra.Validator)
				if err != nil {
					return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "invalid validator for argument %q of hook %q", ra.Name, name)
				}
				arg.Validator = v
			}
			hook.Arguments = append(hook.Arguments, arg)
		}
		table[name] = hook
	}
	return table, nil
}
