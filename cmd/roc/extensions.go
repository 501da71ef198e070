package roc

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/roc/pkg/extension"
	"github.com/arthur-debert/roc/pkg/style"
)

func (a *App) newExtensionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "extensions",
		Short:   MsgExtensionsShort,
		Args:    cobra.NoArgs,
		GroupID: GroupCore,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.context()
			if err != nil {
				return err
			}

			p := style.NewPrinter(cmd.OutOrStdout())
			if len(ctx.UsedExtensions) == 0 && len(ctx.ProjectExtensions) == 0 {
				p.Line("Muted", MsgNoExtensions)
				return nil
			}

			printExtensions(p, MsgUsedExtensions, ctx.UsedExtensions)
			printExtensions(p, MsgProjectExtensions, ctx.ProjectExtensions)
			return nil
		},
	}
}

func printExtensions(p *style.Printer, title string, exts []*extension.Extension) {
	if len(exts) == 0 {
		return
	}
	p.Line("Header", title)
	for _, ext := range exts {
		p.Printf("  %s", p.Render("Extension", ext.Name))
		if ext.Version != "" {
			p.Printf(" %s", p.Render("Version", ext.Version))
		}
		p.Printf(" %s", p.Render("Muted", string(ext.Type)))
		if ext.Path != "" {
			p.Printf(" %s", p.Render("Path", ext.Path))
		}
		p.Printf("\n")
	}
}
