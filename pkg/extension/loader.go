package extension

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/registry"
)

// Loader turns a reference into a loaded extension. Loaders return an
// EXTENSION_NOT_FOUND error when they do not know the extension.
type Loader interface {
	Load(ctx context.Context, ref Ref) (*Extension, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context, ref Ref) (*Extension, error)

func (f LoaderFunc) Load(ctx context.Context, ref Ref) (*Extension, error) { return f(ctx, ref) }

// Factory builds the descriptor of a compiled-in extension
type Factory func() (*Descriptor, error)

// StaticLoader serves extensions compiled into the binary
type StaticLoader struct {
	factories registry.Registry[Factory]
}

// NewStaticLoader creates an empty static loader
func NewStaticLoader() *StaticLoader {
	return &StaticLoader{factories: registry.New[Factory]()}
}

// Register adds a compiled-in extension
func (l *StaticLoader) Register(name string, factory Factory) error {
	return l.factories.Register(name, factory)
}

// Names returns the registered extensions in registration order
func (l *StaticLoader) Names() []string {
	return l.factories.Names()
}

func (l *StaticLoader) Load(_ context.Context, ref Ref) (*Extension, error) {
	factory, err := l.factories.Get(ref.Name)
	if err != nil {
		return nil, notFound(ref)
	}

	desc, err := factory()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrExtensionLoad, "failed to build extension %q", ref.Name).
			WithExtension(ref.Name)
	}
	if desc == nil {
		desc = &Descriptor{}
	}
	if desc.Name == "" {
		desc.Name = ref.Name
	}

	return &Extension{
		Name:       desc.Name,
		Version:    desc.Version,
		Type:       ref.Type,
		Path:       ref.Path,
		Standalone: true,
		Descriptor: desc,
	}, nil
}

// Builtin holds the extensions compiled into the binary
var Builtin = NewStaticLoader()

// Register adds a compiled-in extension to Builtin
func Register(name string, factory Factory) error {
	return Builtin.Register(name, factory)
}

// ChainLoader tries each loader in turn
type ChainLoader []Loader

func (c ChainLoader) Load(ctx context.Context, ref Ref) (*Extension, error) {
	logger := logging.ForExtension("extension", ref.Name)
	for _, loader := range c {
		ext, err := loader.Load(ctx, ref)
		if err == nil {
			return ext, nil
		}
		if !errors.IsErrorCode(err, errors.ErrExtensionNotFound) {
			return nil, err
		}
		logger.Trace().Str("ref", ref.String()).Msgf("Not found by %T", loader)
	}
	return nil, notFound(ref)
}

func notFound(ref Ref) error {
	return errors.Newf(errors.ErrExtensionNotFound, "extension %s could not be found", ref).
		WithDetail("ref", ref.String()).
		WithExtension(ref.Name)
}

// ParseRef turns a list entry into a reference. Entries starting with "."
// or "/" are directories, resolved against baseDir when relative.
func ParseRef(entry string, typ Type, baseDir string) Ref {
	if strings.HasPrefix(entry, ".") || filepath.IsAbs(entry) {
		path := entry
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return Ref{Name: filepath.Base(path), Type: typ, Path: filepath.Clean(path)}
	}
	return Ref{Name: entry, Type: typ}
}

// ParseRefs applies ParseRef to every entry
func ParseRefs(entries []string, typ Type, baseDir string) []Ref {
	refs := make([]Ref, 0, len(entries))
	for _, entry := range entries {
		refs = append(refs, ParseRef(entry, typ, baseDir))
	}
	return refs
}
