package build

import (
	"context"
	"slices"
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/extension"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/settings"
)

// Options configure a build
type Options struct {
	// ProjectDir is the directory holding the project's package.json
	ProjectDir string

	Packages          []extension.Ref
	Plugins           []extension.Ref
	ProjectExtensions []extension.Ref

	Loader extension.Loader

	// Settings are the project's own settings, merged over the extensions'
	Settings settings.Tree
	// Assignments are "path=value" strings applied last, converted by the
	// validator found at each path
	Assignments []string
}

type phase struct {
	name string
	run  func(ctx context.Context, s *State) error
}

var phases = []phase{
	{"load", loadPhase},
	{"merge", mergePhase},
	{"dev-exports", devExportsPhase},
	{"normal-exports", normalExportsPhase},
	{"post-init", postInitPhase},
	{"finalize", finalizePhase},
}

// Build reduces the extensions named in opts into a context. Any failure
// aborts the build.
func Build(ctx context.Context, opts Options) (*Context, error) {
	logger := logging.GetLogger("build")
	done := logging.LogOperationStart(logger, "build")
	defer done()

	if opts.Loader == nil {
		return nil, errors.New(errors.ErrInvalidInput, "build requires a loader")
	}

	s := NewState(opts)
	for _, p := range phases {
		logger.Debug().Str("phase", p.name).Msg("Running phase")
		if err := p.run(ctx, s); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Strs("extensions", s.Context.UsedNames()).
		Int("commands", len(s.Context.Commands.Children)).
		Msg("Build completed")
	return s.Context, nil
}

func loadPhase(ctx context.Context, s *State) error {
	groups := []struct {
		refs    []extension.Ref
		project bool
	}{
		{s.Options.Packages, false},
		{s.Options.Plugins, false},
		{s.Options.ProjectExtensions, true},
	}

	for _, group := range groups {
		for _, ref := range group.refs {
			if err := s.load(ctx, ref, nil, group.project); err != nil {
				return err
			}
		}
	}
	return nil
}

// load loads ref and, before it, the packages and plugins it declares
func (s *State) load(ctx context.Context, ref extension.Ref, stack []string, project bool) error {
	if err := checkCycle(stack, refKey(ref), ref.Name); err != nil {
		return err
	}
	if ref.Name != "" && s.seen[ref.Name] {
		logger := logging.ForExtension("build", ref.Name)
		logger.Debug().Msg("Extension already loaded, skipping")
		return nil
	}

	ext, err := s.Options.Loader.Load(ctx, ref)
	if err != nil {
		if rocErr, ok := err.(*errors.RocError); ok {
			return rocErr.WithExtension(ref.Name)
		}
		return errors.Wrapf(err, errors.ErrExtensionLoad, "failed to load %s", ref).WithExtension(ref.Name)
	}
	if ext.Descriptor == nil {
		return errors.Newf(errors.ErrExtensionInvalid, "extension %s has no descriptor", ref).
			WithExtension(ext.Name)
	}
	if err := checkCycle(stack, ext.Name, ext.Name); err != nil {
		return err
	}
	if s.seen[ext.Name] {
		logger := logging.ForExtension("build", ext.Name)
		logger.Debug().Msg("Extension already loaded, skipping")
		return nil
	}

	stack = append(stack, ext.Name)
	for _, nested := range ext.Descriptor.Packages {
		if err := s.load(ctx, nested, stack, false); err != nil {
			return err
		}
	}
	for _, nested := range ext.Descriptor.Plugins {
		if err := s.load(ctx, nested, stack, false); err != nil {
			return err
		}
	}

	if s.seen[ext.Name] {
		return nil
	}
	s.seen[ext.Name] = true
	s.loaded = append(s.loaded, ext)
	if project {
		s.Context.ProjectExtensions = append(s.Context.ProjectExtensions, ext)
	} else {
		s.Context.UsedExtensions = append(s.Context.UsedExtensions, ext)
	}

	logger := logging.ForExtension("build", ext.Name)
	logger.Debug().
		Str("type", string(ext.Type)).
		Str("version", ext.Version).
		Msg("Extension loaded")
	return nil
}

func checkCycle(stack []string, key, name string) error {
	if !slices.Contains(stack, key) {
		return nil
	}
	chain := append(append([]string(nil), stack...), key)
	return errors.Newf(errors.ErrExtensionCycle, "extensions depend on each other: %s",
		strings.Join(chain, " -> ")).
		WithDetail("chain", chain).
		WithExtension(name)
}

func refKey(ref extension.Ref) string {
	if ref.Name != "" {
		return ref.Name
	}
	return ref.Path
}
