package roc

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"github.com/arthur-debert/roc/pkg/build"
	"github.com/arthur-debert/roc/pkg/config"
	"github.com/arthur-debert/roc/pkg/dependencies"
	"github.com/arthur-debert/roc/pkg/extension"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/packagejson"
)

// globalFlags are the root flags needed before cobra parses the command line
type globalFlags struct {
	verbosity int
	dir       string
	sets      []string
	packages  []string
	plugins   []string
}

func (g *globalFlags) register(flags *pflag.FlagSet) {
	flags.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVarP(&g.dir, "dir", "d", "", MsgFlagDir)
	flags.StringArrayVar(&g.sets, "set", nil, MsgFlagSet)
	flags.StringArrayVar(&g.packages, "package", nil, MsgFlagPackage)
	flags.StringArrayVar(&g.plugins, "plugin", nil, MsgFlagPlugin)
}

// scanGlobalFlags reads the root flags out of args. Everything else,
// including flags of commands that do not exist yet, is ignored.
func scanGlobalFlags(args []string) globalFlags {
	var g globalFlags
	flags := pflag.NewFlagSet("roc", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)
	g.register(flags)
	_ = flags.Parse(args)
	return g
}

func (g globalFlags) overrides() map[string]interface{} {
	out := make(map[string]interface{})
	if len(g.packages) > 0 {
		out["packages"] = g.packages
	}
	if len(g.plugins) > 0 {
		out["plugins"] = g.plugins
	}
	return out
}

// project is what roc knows about the directory it runs in
type project struct {
	Dir     string
	Config  *config.Config
	Package *packagejson.Package
	Context *build.Context
	// Unmet is the dependency mismatch error found at startup, if any
	Unmet error
}

// loadProject reads the configuration and package.json of the project then
// builds its context
func (a *App) loadProject(ctx context.Context, g globalFlags) (*project, error) {
	logger := logging.GetLogger("roc")

	dir, err := config.ProjectDir(g.dir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir, g.overrides())
	if err != nil {
		return nil, err
	}
	pkg, err := packagejson.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	refs, err := extension.Discover(pkg, cfg.ExtensionPatterns(), cfg.Selection())
	if err != nil {
		return nil, err
	}
	opts := build.Options{
		ProjectDir:        dir,
		ProjectExtensions: cfg.ProjectRefs(),
		Loader:            a.loader(dir),
		Settings:          cfg.SettingsTree(),
		Assignments:       g.sets,
	}
	for _, ref := range refs {
		if ref.Type == extension.TypePlugin {
			opts.Plugins = append(opts.Plugins, ref)
		} else {
			opts.Packages = append(opts.Packages, ref)
		}
	}

	bctx, err := build.Build(ctx, opts)
	if err != nil {
		return nil, err
	}
	a.Current.Set(bctx)

	p := &project{Dir: dir, Config: cfg, Package: pkg, Context: bctx}
	if !cfg.Verify.Dependencies {
		return p, nil
	}

	mismatches, err := dependencies.Verify(dir, bctx.Requirements)
	if err != nil {
		return nil, err
	}
	for _, m := range mismatches {
		logger.Debug().
			Str("module", m.Name).
			Str("range", m.Range).
			Str("extension", m.Extension).
			Str("reason", string(m.Reason)).
			Msg("Dependency requirement not met")
	}
	p.Unmet = dependencies.MismatchError(mismatches)
	return p, nil
}

func (a *App) loader(dir string) extension.Loader {
	if a.Loader != nil {
		return a.Loader
	}
	manifests := extension.NewManifestLoader(dir)
	manifests.Executor = a.Executor
	return extension.ChainLoader{extension.Builtin, manifests}
}
