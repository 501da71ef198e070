package roc

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/roc/pkg/dependencies"
	"github.com/arthur-debert/roc/pkg/style"
)

func (a *App) newDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "deps",
		Short:       MsgDepsShort,
		GroupID:     GroupCore,
		Annotations: map[string]string{skipVerify: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(a.newDepsVerifyCmd())
	cmd.AddCommand(a.newDepsExportsCmd())
	return cmd
}

func (a *App) newDepsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: MsgDepsVerifyShort,
		Long:  MsgDepsVerifyLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.context()
			if err != nil {
				return err
			}

			p := style.NewPrinter(cmd.OutOrStdout())
			requires := ctx.Requirements
			if len(requires) == 0 {
				p.Line("Muted", MsgNoRequirements)
				return nil
			}

			mismatches, err := dependencies.Verify(a.project.Dir, requires)
			if err != nil {
				return err
			}
			if len(mismatches) == 0 {
				p.Line("Success", fmt.Sprintf(MsgDepsOK, len(requires)))
				return nil
			}

			p.Line("Error", MsgRequirementHeader)
			for _, m := range mismatches {
				p.Printf(MsgRequirementItem,
					p.Render("Reason", fmt.Sprintf("%-14s", m.Reason)),
					p.Render("Module", m.Name+"@"+m.Range),
					p.Render("Muted", "("+m.Extension+")"))
			}
			return dependencies.MismatchError(mismatches)
		},
	}
}

// dependencyView is how a dependency is printed
type dependencyView struct {
	Version   string `yaml:"version,omitempty"`
	Resolve   string `yaml:"resolve,omitempty"`
	Extension string `yaml:"extension,omitempty"`
}

func tableView(t dependencies.Table) map[string]dependencyView {
	if len(t) == 0 {
		return nil
	}
	out := make(map[string]dependencyView, len(t))
	for name, dep := range t {
		out[name] = dependencyView{Version: dep.Version, Resolve: dep.Resolve, Extension: dep.Extension}
	}
	return out
}

func (a *App) newDepsExportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exports",
		Short: MsgDepsExportsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.context()
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), struct {
				Exports  map[string]dependencyView `yaml:"exports,omitempty"`
				Uses     map[string]dependencyView `yaml:"uses,omitempty"`
				Requires map[string]dependencyView `yaml:"requires,omitempty"`
			}{
				Exports:  tableView(ctx.Exports.Exports),
				Uses:     tableView(ctx.Exports.Uses),
				Requires: tableView(ctx.Exports.Requires),
			})
		},
	}
}
