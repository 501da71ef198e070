package extension

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/roc/pkg/commands"
	"github.com/arthur-debert/roc/pkg/dependencies"
	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/hooks"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/packagejson"
	"github.com/arthur-debert/roc/pkg/settings"
	"github.com/arthur-debert/roc/pkg/shell"
	"github.com/arthur-debert/roc/pkg/validators"
)

// ManifestFile is the file describing an extension on disk
const ManifestFile = "roc.toml"

type manifest struct {
	Name         string               `toml:"name"`
	Version      string               `toml:"version"`
	Config       map[string]any       `toml:"config"`
	Meta         map[string]metaEntry `toml:"meta"`
	Commands     map[string]any       `toml:"commands"`
	Hooks        map[string]any       `toml:"hooks"`
	Actions      []actionEntry        `toml:"actions"`
	Dependencies map[string]any       `toml:"dependencies"`
	Packages     []string             `toml:"packages"`
	Plugins      []string             `toml:"plugins"`
}

// metaEntry describes one settings path, keyed by its dotted path
type metaEntry struct {
	Description string `toml:"description"`
	Validator   string `toml:"validator"`
	Override    any    `toml:"override"`
}

type actionEntry struct {
	Hook        string `toml:"hook"`
	Extension   string `toml:"extension"`
	Description string `toml:"description"`
	Command     string `toml:"command"`
}

// ManifestLoader reads extensions from disk. An extension is a directory
// holding a package.json and a roc.toml, either installed under the
// project's node_modules or given by path.
type ManifestLoader struct {
	ProjectDir string
	Executor   *shell.Executor
}

// NewManifestLoader creates a loader for the project in projectDir
func NewManifestLoader(projectDir string) *ManifestLoader {
	return &ManifestLoader{ProjectDir: projectDir, Executor: shell.NewExecutor()}
}

func (l *ManifestLoader) Load(_ context.Context, ref Ref) (*Extension, error) {
	dir := ref.Path
	if dir == "" {
		dir = packagejson.ModuleDir(l.ProjectDir, ref.Name)
	}

	pkg, err := packagejson.ReadDir(dir)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) {
			return nil, notFound(ref)
		}
		return nil, errors.Wrapf(err, errors.ErrExtensionLoad, "failed to load extension %s", ref).
			WithExtension(ref.Name)
	}

	name := pkg.Name
	if name == "" {
		name = ref.Name
	}

	desc, err := l.ReadManifest(filepath.Join(dir, ManifestFile), dir)
	if err != nil {
		if rocErr, ok := err.(*errors.RocError); ok {
			return nil, rocErr.WithExtension(name)
		}
		return nil, err
	}
	if desc.Name == "" {
		desc.Name = name
	}
	if desc.Version == "" {
		desc.Version = pkg.Version
	}

	logger := logging.ForExtension("extension", desc.Name)
	logger.Debug().
		Str("dir", dir).
		Str("version", desc.Version).
		Msg("Loaded extension manifest")

	return &Extension{
		Name:        desc.Name,
		Version:     desc.Version,
		Path:        dir,
		Type:        ref.Type,
		PackageJSON: pkg,
		Standalone:  ref.Path != "",
		Descriptor:  desc,
	}, nil
}

// ReadManifest decodes a roc.toml into a descriptor. Relative paths in the
// manifest are resolved against dir, which is also where shell actions run.
func (l *ManifestLoader) ReadManifest(path, dir string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrExtensionInvalid, "%s has no %s", dir, ManifestFile).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrExtensionLoad, "failed to read %s", path)
	}

	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "failed to parse %s", path).
			WithDetail("path", path)
	}
	return l.descriptor(m, dir)
}

func (l *ManifestLoader) descriptor(m manifest, dir string) (*Descriptor, error) {
	desc := &Descriptor{
		Name:     m.Name,
		Version:  m.Version,
		Config:   settings.Tree(m.Config),
		Packages: ParseRefs(m.Packages, TypePackage, dir),
		Plugins:  ParseRefs(m.Plugins, TypePlugin, dir),
	}

	if len(m.Meta) > 0 {
		desc.Meta = settings.NewMeta()
		paths := make([]string, 0, len(m.Meta))
		for path := range m.Meta {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			entry := m.Meta[path]
			field := settings.Field{Description: entry.Description}
			if entry.Validator != "" {
				v, err := validators.Parse(entry.Validator)
				if err != nil {
					return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "invalid validator for %q", path)
				}
				field.Validator = v
			}
			override, err := settings.ParseOverride(entry.Override)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "invalid override for %q", path)
			}
			field.Override = override
			desc.Meta.Set(path, field)
		}
	}

	if len(m.Commands) > 0 {
		group, err := commands.FromMap(m.Commands)
		if err != nil {
			return nil, err
		}
		desc.Commands = group
	}

	if len(m.Hooks) > 0 {
		table, err := hooks.FromMap(m.Hooks)
		if err != nil {
			return nil, err
		}
		desc.Hooks = table
	}

	for i, entry := range m.Actions {
		if entry.Command == "" {
			return nil, errors.Newf(errors.ErrExtensionInvalid, "action %d has no command", i)
		}
		desc.Actions = append(desc.Actions, hooks.Action{
			Hook:        entry.Hook,
			Extension:   entry.Extension,
			Description: entry.Description,
			Func:        l.shellAction(entry.Command, dir),
		})
	}

	if len(m.Dependencies) > 0 {
		decl, err := dependencies.FromMap(m.Dependencies)
		if err != nil {
			return nil, err
		}
		desc.Dependencies = decl
	}

	return desc, nil
}

func (l *ManifestLoader) shellAction(line, dir string) hooks.ActionFunc {
	return func(ctx context.Context, in hooks.Input) (any, error) {
		env := map[string]string{
			"ROC_HOOK":           in.Hook,
			"ROC_HOOK_EXTENSION": in.Extension,
		}
		for name, value := range in.Arguments {
			if value != nil {
				env["ROC_HOOK_ARG_"+envName(name)] = fmt.Sprint(value)
			}
		}
		return nil, l.Executor.Run(ctx, shell.Command{Line: line, Dir: dir, Env: env})
	}
}

func envName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, r-'a'+'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
