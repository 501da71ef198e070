package roc

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/hooks"
	"github.com/arthur-debert/roc/pkg/style"
)

func (a *App) newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hooks",
		Short:   MsgHooksShort,
		GroupID: GroupCore,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(a.newHooksListCmd())
	cmd.AddCommand(a.newHooksRunCmd())
	return cmd
}

func (a *App) newHooksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgHooksListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.context()
			if err != nil {
				return err
			}

			p := style.NewPrinter(cmd.OutOrStdout())
			owners := ctx.Hooks.Extensions()
			if len(owners) == 0 {
				p.Line("Muted", MsgNoHooks)
				return nil
			}

			for _, owner := range owners {
				p.Line("Extension", fmt.Sprintf(MsgHookOwner, owner))
				table := ctx.Hooks[owner]
				names := make([]string, 0, len(table))
				for name := range table {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					p.Printf(MsgHookItem, p.Render("Module", name))
					if d := table[name].Description; d != "" {
						p.Printf(MsgHookDescription, d)
					}
					p.Printf("\n")
				}
			}
			return nil
		},
	}
}

func (a *App) newHooksRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "run <extension> <hook> [args...]",
		Short:   MsgHooksRunShort,
		Long:    MsgHooksRunLong,
		Example: MsgHooksRunExample,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.context()
			if err != nil {
				return err
			}

			owner, name := args[0], args[1]
			def, ok := ctx.Hooks.Lookup(owner, name)
			if !ok {
				return errors.Newf(errors.ErrHookNotFound, "extension %q does not define the hook %q", owner, name).
					WithDetail("hook", name).
					WithExtension(owner)
			}

			values, err := hookArguments(def, args[2:])
			if err != nil {
				return err
			}

			result, err := hooks.Run(cmd.Context(), ctx.Hooks, ctx.Actions, owner, name, values...)
			if err != nil {
				return err
			}
			if result == nil {
				return nil
			}
			return writeYAML(cmd.OutOrStdout(), result)
		},
	}
}

// hookArguments converts command line strings with the converters of the
// hook's argument validators. Surplus arguments are passed through so the
// hook runner reports them.
func hookArguments(def hooks.Hook, raw []string) ([]any, error) {
	values := make([]any, 0, len(raw))
	for i, s := range raw {
		if i >= len(def.Arguments) || def.Arguments[i].Validator == nil {
			values = append(values, s)
			continue
		}
		arg := def.Arguments[i]
		convert := arg.Validator.Describe().Converter
		if convert == nil {
			return nil, errors.Newf(errors.ErrHookArguments, "argument %q cannot be given on the command line", arg.Name).
				WithDetail("argument", arg.Name)
		}
		v, err := convert(s)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrHookArguments, "invalid value for argument %q", arg.Name).
				WithDetail("argument", arg.Name)
		}
		values = append(values, v)
	}
	return values, nil
}
