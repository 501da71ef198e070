package roc

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/settings"
	"github.com/arthur-debert/roc/pkg/style"
)

func (a *App) newSettingsCmd() *cobra.Command {
	var showMeta bool

	cmd := &cobra.Command{
		Use:     "settings [path]",
		Short:   MsgSettingsShort,
		Long:    MsgSettingsLong,
		Example: MsgSettingsExample,
		Args:    cobra.MaximumNArgs(1),
		GroupID: GroupCore,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.context()
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			if showMeta {
				return printMeta(cmd.OutOrStdout(), ctx.Meta, path)
			}

			var value any = ctx.Config
			if path != "" {
				if !settings.Has(ctx.Config, path) {
					return errors.Newf(errors.ErrNotFound, MsgUnknownSettingPath, path).WithDetail("path", path)
				}
				value = settings.Get(ctx.Config, path)
			}
			return writeYAML(cmd.OutOrStdout(), value)
		},
	}

	cmd.Flags().BoolVar(&showMeta, "meta", false, MsgFlagMeta)
	return cmd
}

func printMeta(out io.Writer, meta *settings.Meta, path string) error {
	node := meta
	if path != "" {
		node = meta.Lookup(path)
		if node == nil {
			return errors.Newf(errors.ErrNotFound, MsgUnknownSettingPath, path).WithDetail("path", path)
		}
	}

	p := style.NewPrinter(out)
	printed := 0
	line := func(full string, n *settings.Meta) {
		if n.Validator == nil && n.Description == "" {
			return
		}
		typ := "-"
		if n.Validator != nil {
			info := n.Validator.Describe()
			typ = info.Type
			if info.Required {
				typ += ", required"
			}
		}
		p.Printf("%s %s", p.Render("Module", full), p.Render("Muted", "("+typ+")"))
		if n.Description != "" {
			p.Printf(" %s", n.Description)
		}
		if len(n.Extensions) > 0 {
			p.Printf(" %s", p.Render("Path", "["+strings.Join(n.Extensions, ", ")+"]"))
		}
		p.Printf("\n")
		printed++
	}

	if path != "" {
		line(path, node)
	}
	node.Walk(func(rel string, child *settings.Meta) {
		full := rel
		if path != "" {
			full = settings.JoinPath(path, rel)
		}
		line(full, child)
	})

	if printed == 0 {
		p.Line("Muted", MsgSettingsEmpty)
	}
	return nil
}

func writeYAML(out io.Writer, value any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf(MsgErrEncode, err)
	}
	return enc.Close()
}
