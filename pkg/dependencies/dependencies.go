package dependencies

import (
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/packagejson"
)

// DevSuffix marks the development flavour of an extension
const DevSuffix = "-dev"

// Dependency is one module entry of a dependency table
type Dependency struct {
	Version string `mapstructure:"version"`
	// Resolve overrides the directory the module is resolved from
	Resolve string `mapstructure:"resolve"`

	Extension string `mapstructure:"-"`
	Context   string `mapstructure:"-"`
}

// Table maps module names to dependencies
type Table map[string]Dependency

// Clone returns a shallow copy
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Names returns the module names in sorted order
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declaration is what an extension states about its dependencies
type Declaration struct {
	Exports  Table
	Uses     Table
	Requires Table
}

// IsZero reports whether nothing is declared
func (d Declaration) IsZero() bool {
	return len(d.Exports) == 0 && len(d.Uses) == 0 && len(d.Requires) == 0
}

// Record is the dependency state of one loaded extension
type Record struct {
	Exports  Table
	Uses     Table
	Requires Table
	// Direct lists the modules in the extension's own package.json dependencies
	Direct []string
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{
		Exports:  r.Exports.Clone(),
		Uses:     r.Uses.Clone(),
		Requires: r.Requires.Clone(),
		Direct:   append([]string(nil), r.Direct...),
	}
}

func (r *Record) isDirect(name string) bool {
	for _, d := range r.Direct {
		if d == name {
			return true
		}
	}
	return false
}

// Context holds the records of every extension in a build
type Context struct {
	Extensions map[string]*Record
	// PathsToExtensions maps extension directories to extension names
	PathsToExtensions map[string]string
}

// NewContext returns an empty context
func NewContext() Context {
	return Context{
		Extensions:        make(map[string]*Record),
		PathsToExtensions: make(map[string]string),
	}
}

// Clone returns a deep copy of the context
func (dc Context) Clone() Context {
	out := NewContext()
	for name, rec := range dc.Extensions {
		out.Extensions[name] = rec.clone()
	}
	for path, name := range dc.PathsToExtensions {
		out.PathsToExtensions[path] = name
	}
	return out
}

// Record returns the record of extension name, nil when unknown
func (dc Context) Record(name string) *Record {
	return dc.Extensions[name]
}

// Set records the declaration of extension name located at path and returns
// the new context. Every entry is stamped with the extension and its path.
// Exports of modules listed in the extension's own package.json dependencies
// are dropped.
func Set(dc Context, name, path string, decl Declaration, pkg *packagejson.Package) (Context, *Record) {
	logger := logging.ForExtension("dependencies", name)

	out := dc.Clone()
	rec := &Record{
		Exports:  stamp(decl.Exports, name, path),
		Uses:     stamp(decl.Uses, name, path),
		Requires: stamp(decl.Requires, name, path),
	}
	if pkg != nil {
		for dep := range pkg.Dependencies {
			rec.Direct = append(rec.Direct, dep)
		}
		sort.Strings(rec.Direct)
	}

	for module := range rec.Exports {
		if rec.isDirect(module) {
			logger.Debug().Str("module", module).Msg("Dropping export of a direct dependency")
			delete(rec.Exports, module)
		}
	}

	out.Extensions[name] = rec
	if path != "" {
		out.PathsToExtensions[path] = name
	}
	return out, rec
}

func stamp(table Table, name, path string) Table {
	out := make(Table, len(table))
	for module, dep := range table {
		dep.Extension = name
		dep.Context = path
		out[module] = dep
	}
	return out
}

// IsDev reports whether name is the development flavour of an extension
func IsDev(name string) bool {
	return strings.HasSuffix(name, DevSuffix)
}

// DevName returns the development counterpart of name
func DevName(name string) string {
	if IsDev(name) {
		return name
	}
	return name + DevSuffix
}

// NormalName returns the normal counterpart of name
func NormalName(name string) string {
	return strings.TrimSuffix(name, DevSuffix)
}

// ReconcileDev lets every normal extension borrow the exports of its "-dev"
// counterpart. devExports holds the dev exports as they were when loaded.
func ReconcileDev(dc Context, used []string, devExports map[string]Table) Context {
	return reconcile(dc, used, devExports, func(name string) (string, bool) {
		if IsDev(name) {
			return "", false
		}
		return DevName(name), true
	})
}

// ReconcileNormal lets every "-dev" extension borrow the exports of its normal
// counterpart. normalExports holds the normal exports as they were when loaded.
func ReconcileNormal(dc Context, used []string, normalExports map[string]Table) Context {
	return reconcile(dc, used, normalExports, func(name string) (string, bool) {
		if !IsDev(name) {
			return "", false
		}
		return NormalName(name), true
	})
}

func reconcile(dc Context, used []string, snapshots map[string]Table, counterpart func(string) (string, bool)) Context {
	out := dc.Clone()
	inBuild := make(map[string]bool, len(used))
	for _, name := range used {
		inBuild[name] = true
	}

	for _, name := range used {
		other, ok := counterpart(name)
		if !ok || !inBuild[other] {
			continue
		}
		borrowed, ok := snapshots[other]
		if !ok {
			continue
		}
		rec := out.Extensions[name]
		if rec == nil {
			continue
		}
		if rec.Exports == nil {
			rec.Exports = make(Table)
		}
		for module, dep := range borrowed {
			if _, exists := rec.Exports[module]; exists || rec.isDirect(module) {
				continue
			}
			rec.Exports[module] = dep
		}
	}
	return out
}

// Summarize unions the tables of every used extension in load order. Later
// extensions win.
func Summarize(dc Context, used []string) Declaration {
	sum := Declaration{Exports: make(Table), Uses: make(Table), Requires: make(Table)}
	for _, name := range used {
		rec := dc.Extensions[name]
		if rec == nil {
			continue
		}
		for module, dep := range rec.Exports {
			sum.Exports[module] = dep
		}
		for module, dep := range rec.Uses {
			sum.Uses[module] = dep
		}
		for module, dep := range rec.Requires {
			sum.Requires[module] = dep
		}
	}
	return sum
}

// Requirement is one requires entry of one extension
type Requirement struct {
	Name string
	Dependency
}

// Requirements lists the requires entries of every used extension in load
// order, sorted by module within an extension. Conflicting ranges declared by
// different extensions are all kept.
func Requirements(dc Context, used []string) []Requirement {
	var out []Requirement
	for _, name := range used {
		rec := dc.Extensions[name]
		if rec == nil {
			continue
		}
		for _, module := range rec.Requires.Names() {
			out = append(out, Requirement{Name: module, Dependency: rec.Requires[module]})
		}
	}
	return out
}

// FromMap decodes the manifest form of a declaration. An entry is either a
// version range or a table with version and resolve keys.
func FromMap(raw map[string]any) (Declaration, error) {
	var decl Declaration
	for kind, value := range raw {
		entries, ok := value.(map[string]any)
		if !ok {
			return decl, errors.Newf(errors.ErrExtensionInvalid, "dependencies.%s must be a table, got %T", kind, value)
		}
		table, err := decodeTable(kind, entries)
		if err != nil {
			return decl, err
		}
		switch kind {
		case "exports":
			decl.Exports = table
		case "uses":
			decl.Uses = table
		case "requires":
			decl.Requires = table
		default:
			return decl, errors.Newf(errors.ErrExtensionInvalid, "unknown dependency kind %q", kind)
		}
	}
	return decl, nil
}

func decodeTable(kind string, entries map[string]any) (Table, error) {
	table := make(Table, len(entries))
	for module, entry := range entries {
		var dep Dependency
		switch v := entry.(type) {
		case string:
			dep.Version = v
		default:
			if err := mapstructure.Decode(v, &dep); err != nil {
				return nil, errors.Wrapf(err, errors.ErrExtensionInvalid, "invalid dependencies.%s entry %q", kind, module)
			}
		}
		table[module] = dep
	}
	return table, nil
}
