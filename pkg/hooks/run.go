package hooks

import (
	"context"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
)

// Run fires hook published by extension. The arguments are validated against
// the hook definition, then every matching action runs in registration order,
// each one receiving the value returned by the previous one. The last value
// is returned.
func Run(ctx context.Context, hooks Hooks, actions []ActionGroup, extension, hook string, args ...any) (any, error) {
	logger := logging.ForExtension("hooks", extension)

	def, ok := hooks.Lookup(extension, hook)
	if !ok {
		return nil, errors.Newf(errors.ErrHookNotFound, "extension %q does not define the hook %q", extension, hook).
			WithDetail("hook", hook).
			WithExtension(extension)
	}

	named, err := bindArguments(def, extension, hook, args)
	if err != nil {
		return nil, err
	}

	var value any
	for _, group := range actions {
		for _, action := range group.Actions {
			if !action.Matches(extension, hook) || action.Func == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			logger.Debug().
				Str("hook", hook).
				Str("action", group.Extension).
				Str("description", action.Description).
				Msg("Running action")

			result, err := action.Func(ctx, Input{
				Extension:     extension,
				Hook:          hook,
				Arguments:     named,
				PreviousValue: value,
				Context:       group.Context,
			})
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrActionExecute, "action from %q failed on hook %q", group.Extension, hook).
					WithDetail("hook", hook).
					WithDetail("action", group.Extension).
					WithExtension(extension)
			}
			if result == nil {
				continue
			}
			if def.ReturnValue != nil {
				if err := def.ReturnValue.Validate(result); err != nil {
					return nil, errors.Wrapf(err, errors.ErrActionExecute, "action from %q returned an invalid value for hook %q", group.Extension, hook).
						WithDetail("hook", hook).
						WithDetail("action", group.Extension).
						WithExtension(extension)
				}
			}
			value = result
		}
	}
	return value, nil
}

func bindArguments(def Hook, extension, hook string, args []any) (map[string]any, error) {
	if len(args) > len(def.Arguments) {
		return nil, errors.Newf(errors.ErrHookArguments, "hook %q takes %d arguments, got %d", hook, len(def.Arguments), len(args)).
			WithDetail("hook", hook).
			WithExtension(extension)
	}

	named := make(map[string]any, len(def.Arguments))
	for i, arg := range def.Arguments {
		var value any
		if i < len(args) {
			value = args[i]
		}
		if arg.Validator != nil {
			if err := arg.Validator.Validate(value); err != nil {
				return nil, errors.Wrapf(err, errors.ErrHookArguments, "argument %q of hook %q is invalid", arg.Name, hook).
					WithDetail("hook", hook).
					WithDetail("argument", arg.Name).
					WithExtension(extension)
			}
		}
		named[arg.Name] = value
	}
	return named, nil
}
