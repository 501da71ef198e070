// Package cli turns the command tree of a built context into cobra commands.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arthur-debert/roc/pkg/build"
	"github.com/arthur-debert/roc/pkg/commands"
	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/settings"
	"github.com/arthur-debert/roc/pkg/shell"
	"github.com/arthur-debert/roc/pkg/validators"
)

// Environment variables shell commands receive
const (
	EnvCommand      = "ROC_COMMAND"
	EnvExtensionDir = "ROC_EXTENSION_DIR"
	EnvArgPrefix    = "ROC_ARG_"
	EnvOptionPrefix = "ROC_OPT_"
)

// Adapter attaches extension commands to a cobra tree
type Adapter struct {
	Current  *build.Current
	Executor *shell.Executor
	// ProjectDir is the working directory of shell commands
	ProjectDir string
	// GroupID is set on the top level commands when not empty
	GroupID string

	logger   zerolog.Logger
	reserved map[string]bool
}

// NewAdapter creates an adapter reading the context held by current
func NewAdapter(current *build.Current, executor *shell.Executor, projectDir string) *Adapter {
	return &Adapter{
		Current:    current,
		Executor:   executor,
		ProjectDir: projectDir,
		logger:     logging.GetLogger("cli"),
	}
}

// Attach adds a command under parent for every node of the context's
// command tree. Top level names already used by parent are skipped.
func (a *Adapter) Attach(parent *cobra.Command) error {
	ctx, err := a.Current.Get()
	if err != nil {
		return err
	}
	if ctx == nil || ctx.Commands == nil {
		return nil
	}

	a.reserved = map[string]bool{"h": true}
	parent.Root().PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Shorthand != "" {
			a.reserved[f.Shorthand] = true
		}
	})

	taken := make(map[string]bool)
	for _, c := range parent.Commands() {
		taken[c.Name()] = true
	}

	for _, key := range ctx.Commands.Keys() {
		if taken[key] {
			a.logger.Warn().Str("command", key).Msg("Extension command hidden by a built-in command")
			continue
		}
		cmd := a.command(ctx.Meta, []string{key}, ctx.Commands.Children[key])
		cmd.GroupID = a.GroupID
		parent.AddCommand(cmd)
	}
	return nil
}

func (a *Adapter) command(meta *settings.Meta, path []string, n commands.Node) *cobra.Command {
	key := path[len(path)-1]

	switch node := n.(type) {
	case *commands.Group:
		cmd := &cobra.Command{
			Use:   key,
			Short: node.Description,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cmd.Help()
			},
		}
		for _, child := range node.Keys() {
			childPath := append(append([]string(nil), path...), child)
			cmd.AddCommand(a.command(meta, childPath, node.Children[child]))
		}
		return cmd
	case *commands.Leaf:
		return a.leafCommand(meta, path, node)
	}
	return &cobra.Command{Use: key, Hidden: true}
}

func (a *Adapter) leafCommand(meta *settings.Meta, path []string, leaf *commands.Leaf) *cobra.Command {
	settingFlags := make(map[string]string)

	cmd := &cobra.Command{
		Use:   usage(path[len(path)-1], leaf.Arguments),
		Short: leaf.Description,
		Long:  leaf.Help,
		Args: func(cmd *cobra.Command, args []string) error {
			positional, _ := split(args, cmd.ArgsLenAtDash())
			if len(positional) > len(leaf.Arguments) {
				return fmt.Errorf("accepts at most %d arg(s), received %d", len(leaf.Arguments), len(positional))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.invocation(cmd, path, leaf, args, settingFlags)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context(), leaf, inv, args)
		},
	}

	flags := cmd.Flags()
	for _, opt := range leaf.Options {
		shorthand := ""
		if len(opt.Alias) == 1 && !a.reserved[opt.Alias] {
			shorthand = opt.Alias
		}
		flags.StringP(opt.Name, shorthand, defaultString(opt.Default), describe(opt.Description, opt.Validator))
		if isBoolean(opt.Validator) {
			flags.Lookup(opt.Name).NoOptDefVal = "true"
		}
	}

	for _, p := range exposedSettings(meta, leaf.Settings) {
		name := strings.TrimPrefix(p, "settings.")
		if flags.Lookup(name) != nil {
			continue
		}
		node := meta.Lookup(p)
		flags.String(name, "", describe(node.Description, node.Validator))
		if isBoolean(node.Validator) {
			flags.Lookup(name).NoOptDefVal = "true"
		}
		settingFlags[name] = p
	}

	return cmd
}

func (a *Adapter) invocation(cmd *cobra.Command, path []string, leaf *commands.Leaf, args []string, settingFlags map[string]string) (*commands.Invocation, error) {
	positional, extra := split(args, cmd.ArgsLenAtDash())

	inv := &commands.Invocation{
		Path:      path,
		Arguments: make(map[string]any),
		Options:   make(map[string]any),
		Extra:     extra,
		Context:   leaf.Context,
	}

	for i, arg := range leaf.Arguments {
		value := arg.Default
		if i < len(positional) {
			converted, err := convert(arg.Validator, positional[i])
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid argument %s", arg.Name)
			}
			value = converted
		}
		if err := check(arg.Validator, value); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid argument %s", arg.Name)
		}
		if value != nil {
			inv.Arguments[arg.Name] = value
		}
	}

	for _, opt := range leaf.Options {
		value := opt.Default
		if f := cmd.Flags().Lookup(opt.Name); f != nil && f.Changed {
			converted, err := convert(opt.Validator, f.Value.String())
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid option --%s", opt.Name)
			}
			value = converted
		}
		if err := check(opt.Validator, value); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid option --%s", opt.Name)
		}
		if value != nil {
			inv.Options[opt.Name] = value
		}
	}

	ctx, err := a.Current.Get()
	if err != nil {
		return nil, err
	}
	if ctx != nil {
		inv.Settings = settings.Copy(ctx.Config)
		for name, p := range settingFlags {
			f := cmd.Flags().Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			inv.Settings, err = settings.SetString(inv.Settings, ctx.Meta, p, f.Value.String())
			if err != nil {
				return nil, err
			}
		}
	}

	return inv, nil
}

// Run executes a leaf. Go functions are called with the invocation. Shell
// lines run in the project directory with raw as positional parameters.
func (a *Adapter) Run(ctx context.Context, leaf *commands.Leaf, inv *commands.Invocation, raw []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := a.logger.With().Str("command", strings.Join(inv.Path, " ")).Logger()

	if leaf.Command.Func != nil {
		logger.Debug().Msg("Running command function")
		return leaf.Command.Func(ctx, inv)
	}
	if leaf.Command.Shell == "" {
		return errors.Newf(errors.ErrCommandExecute, "command %q does nothing", strings.Join(inv.Path, " "))
	}

	env, err := environment(inv)
	if err != nil {
		return err
	}

	logger.Debug().Str("line", leaf.Command.Shell).Msg("Running shell command")
	return a.Executor.Run(ctx, shell.Command{
		Line: leaf.Command.Shell,
		Dir:  a.ProjectDir,
		Args: raw,
		Env:  env,
	})
}

func environment(inv *commands.Invocation) (map[string]string, error) {
	env := map[string]string{
		EnvCommand:      strings.Join(inv.Path, " "),
		EnvExtensionDir: inv.Context,
	}
	for name, value := range inv.Arguments {
		env[EnvArgPrefix+envName(name)] = fmt.Sprint(value)
	}
	for name, value := range inv.Options {
		env[EnvOptionPrefix+envName(name)] = fmt.Sprint(value)
	}

	if inv.Settings != nil {
		data, err := json.Parser().Marshal(inv.Settings)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode settings")
		}
		env[build.SettingsEnvVar] = string(data)
	}
	return env, nil
}

func envName(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// exposedSettings lists the settings paths a leaf turns into flags
func exposedSettings(meta *settings.Meta, groups []string) []string {
	root := meta.Lookup("settings")
	if root == nil || len(groups) == 0 {
		return nil
	}

	var paths []string
	for _, group := range groups {
		prefix := "settings"
		node := root
		if group != "*" {
			prefix = settings.JoinPath("settings", group)
			node = meta.Lookup(prefix)
		}
		if node == nil {
			continue
		}
		if node.IsLeaf() && node.Validator != nil {
			paths = append(paths, prefix)
			continue
		}
		node.Walk(func(p string, child *settings.Meta) {
			if child.IsLeaf() && child.Validator != nil {
				paths = append(paths, settings.JoinPath(prefix, p))
			}
		})
	}
	return paths
}

func split(args []string, dash int) ([]string, []string) {
	if dash < 0 || dash > len(args) {
		return args, nil
	}
	return args[:dash], args[dash:]
}

func convert(v validators.Validator, raw string) (any, error) {
	if v == nil {
		return raw, nil
	}
	info := v.Describe()
	if info.Converter == nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s values cannot be given on the command line", info.Type)
	}
	return info.Converter(raw)
}

func check(v validators.Validator, value any) error {
	if v == nil {
		return nil
	}
	return v.Validate(value)
}

func isBoolean(v validators.Validator) bool {
	return v != nil && v.Describe().Type == "boolean"
}

func describe(description string, v validators.Validator) string {
	if v == nil {
		return description
	}
	info := v.Describe()
	if description == "" {
		return "(" + info.Type + ")"
	}
	return fmt.Sprintf("%s (%s)", description, info.Type)
}

func defaultString(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func usage(name string, args []commands.Argument) string {
	parts := []string{name}
	for _, arg := range args {
		if arg.Validator != nil && arg.Validator.Describe().Required {
			parts = append(parts, "<"+arg.Name+">")
		} else {
			parts = append(parts, "["+arg.Name+"]")
		}
	}
	return strings.Join(parts, " ")
}
