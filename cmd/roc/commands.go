package roc

import (
	"context"
	"embed"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/roc/internal/cli"
	"github.com/arthur-debert/roc/internal/version"
	"github.com/arthur-debert/roc/pkg/build"
	"github.com/arthur-debert/roc/pkg/cobrax/topics"
	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/extension"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/shell"
)

//go:embed topics
var topicFiles embed.FS

// skipVerify marks commands that run even when dependency requirements are
// not met
const skipVerify = "roc/skip-verify"

// Command groups of the root command
const (
	GroupCore       = "core"
	GroupExtensions = "extensions"
	GroupMisc       = "misc"
)

// App is the roc command line of one process
type App struct {
	Current  *build.Current
	Executor *shell.Executor
	// Loader replaces the built-in and manifest loaders when set
	Loader extension.Loader

	Out io.Writer
	Err io.Writer

	flags      globalFlags
	project    *project
	projectErr error
}

// NewApp creates an app attached to the process streams
func NewApp() *App {
	return &App{
		Current:  build.NewCurrent(),
		Executor: shell.NewExecutor(),
		Out:      os.Stdout,
		Err:      os.Stderr,
	}
}

// Execute builds the project in the target directory, adds its commands
// to the root command and runs args. Built-in commands that do not need a
// project keep working when the build fails.
func (a *App) Execute(ctx context.Context, args []string) error {
	a.flags = scanGlobalFlags(args)
	logging.SetupLogger(a.flags.verbosity)

	root := a.NewRootCmd()

	a.project, a.projectErr = a.loadProject(ctx, a.flags)
	if a.projectErr != nil {
		log.Debug().Err(a.projectErr).Msg("Project not loaded")
	} else {
		if len(a.project.Context.Commands.Keys()) > 0 {
			root.AddGroup(&cobra.Group{ID: GroupExtensions, Title: MsgGroupExtensions})
		}
		adapter := cli.NewAdapter(a.Current, a.Executor, a.project.Dir)
		adapter.GroupID = GroupExtensions
		if err := adapter.Attach(root); err != nil {
			return err
		}
	}

	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && a.projectErr != nil && strings.HasPrefix(err.Error(), "unknown command") {
		return fmt.Errorf("%w\n"+MsgErrLoadProject, err, a.projectErr)
	}
	return err
}

// NewRootCmd creates the root command with the built-in commands
func (a *App) NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "roc",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")
			if a.project == nil || a.project.Unmet == nil || !verifies(cmd) {
				return nil
			}
			return fmt.Errorf("%w\n"+MsgHintSkipVerify, a.project.Unmet)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return stderrors.New(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Parsed again by cobra so they show in help and do not fail parsing
	var flags globalFlags
	flags.register(rootCmd.PersistentFlags())

	rootCmd.SetOut(a.Out)
	rootCmd.SetErr(a.Err)

	rootCmd.AddGroup(&cobra.Group{ID: GroupCore, Title: MsgGroupCore})
	rootCmd.AddGroup(&cobra.Group{ID: GroupMisc, Title: MsgGroupMisc})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(a.newSettingsCmd())
	rootCmd.AddCommand(a.newExtensionsCmd())
	rootCmd.AddCommand(a.newDepsCmd())
	rootCmd.AddCommand(a.newHooksCmd())
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	manager, err := topics.New(topicFiles, "topics", topics.Options{
		Extensions: []string{".txt", ".md"},
		Renderer:   topics.NewGlamourRenderer(),
	})
	if err == nil {
		manager.Install(rootCmd)
	} else {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// verifies reports whether cmd needs the dependency requirements met. The
// root, help, completion and commands marked skipVerify do not.
func verifies(cmd *cobra.Command) bool {
	if !cmd.HasParent() {
		return false
	}
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipVerify] == "true" {
			return false
		}
	}
	return true
}

// context returns the built context, or why there is none
func (a *App) context() (*build.Context, error) {
	if a.projectErr != nil {
		return nil, fmt.Errorf(MsgErrLoadProject, a.projectErr)
	}
	ctx, err := a.Current.Get()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, errors.New(errors.ErrInternal, "no project loaded")
	}
	return ctx, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       MsgVersionShort,
		Annotations: map[string]string{skipVerify: "true"},
		Args:        cobra.NoArgs,
		GroupID:     GroupMisc,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Get())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		Annotations:           map[string]string{skipVerify: "true"},
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               GroupMisc,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
