package build

import (
	"context"

	"github.com/arthur-debert/roc/pkg/commands"
	"github.com/arthur-debert/roc/pkg/dependencies"
	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/extension"
	"github.com/arthur-debert/roc/pkg/hooks"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/settings"
	"github.com/arthur-debert/roc/pkg/structure"
)

func mergePhase(_ context.Context, s *State) error {
	for _, ext := range s.loaded {
		if err := s.merge(ext, ext.Descriptor, true); err != nil {
			return err
		}
	}
	return nil
}

// merge folds one descriptor into the accumulated context. With
// withDependencies false the descriptor's dependency declarations and
// post-init are ignored.
func (s *State) merge(ext *extension.Extension, desc *extension.Descriptor, withDependencies bool) error {
	logger := logging.ForExtension("build", ext.Name)
	c := s.Context

	config := settings.Resolve(desc.Config)
	checked, err := structure.Check(ext.Name, config, desc.Meta, c.Config, c.Meta)
	if err != nil {
		return withExtension(err, ext.Name)
	}
	c.Meta = settings.MergeMeta(checked, desc.Meta)
	c.Config = settings.Merge(c.Config, desc.Config)

	tree, err := commands.Normalize(ext.Name, ext.Path, desc.Commands, c.Commands)
	if err != nil {
		return withExtension(err, ext.Name)
	}
	c.Commands = tree

	c.Hooks = c.Hooks.Merge(ext.Name, desc.Hooks)
	if len(desc.Actions) > 0 {
		c.Actions = append(c.Actions, hooks.ActionGroup{
			Extension: ext.Name,
			Context:   ext.Path,
			Actions:   desc.Actions,
		})
	}

	if withDependencies {
		var rec *dependencies.Record
		c.Dependencies, rec = dependencies.Set(c.Dependencies, ext.Name, ext.Path, desc.Dependencies, ext.PackageJSON)
		if dependencies.IsDev(ext.Name) {
			s.devExports[ext.Name] = rec.Exports.Clone()
		} else {
			s.normalExports[ext.Name] = rec.Exports.Clone()
		}
	} else if !desc.Dependencies.IsZero() {
		logger.Warn().Msg("Dependencies declared after loading are ignored")
	}

	if errs := settings.Validate(c.Config, c.Meta); len(errs) > 0 {
		if !errs.OnlyRequired() {
			return withExtension(errs.Err(), ext.Name)
		}
		logger.Debug().Strs("paths", errs.Paths()).Msg("Required settings still missing, deferring")
	}

	if withDependencies && desc.PostInit != nil {
		s.postInits = append(s.postInits, postInit{extension: ext, fn: desc.PostInit})
	} else if desc.PostInit != nil {
		logger.Warn().Msg("Post-init returned by a post-init is ignored")
	}

	logger.Debug().Msg("Extension merged")
	return nil
}

func devExportsPhase(_ context.Context, s *State) error {
	s.Context.Dependencies = dependencies.ReconcileDev(s.Context.Dependencies, s.usedNames(), s.devExports)
	return nil
}

func normalExportsPhase(_ context.Context, s *State) error {
	s.Context.Dependencies = dependencies.ReconcileNormal(s.Context.Dependencies, s.usedNames(), s.normalExports)
	return nil
}

// postInitPhase runs the stashed callbacks, last registered first
func postInitPhase(ctx context.Context, s *State) error {
	for i := len(s.postInits) - 1; i >= 0; i-- {
		p := s.postInits[i]
		logger := logging.ForExtension("build", p.extension.Name)
		logger.Debug().Msg("Running post-init")

		result, err := p.fn(ctx, extension.PostInitInput{
			Context:           s.Context,
			LocalDependencies: s.Context.Dependencies.Record(p.extension.Name),
		})
		if err != nil {
			return errors.Wrapf(err, errors.ErrPostInit, "post-init of %q failed", p.extension.Name).
				WithExtension(p.extension.Name)
		}
		if result == nil {
			continue
		}

		if result.Context != nil {
			logger.Debug().Msg("Post-init replaced the context")
			s.Context = result.Context
		}
		if result.Descriptor != nil {
			if err := s.merge(p.extension, result.Descriptor, false); err != nil {
				return errors.Wrapf(err, errors.ErrPostInit, "merging the post-init result of %q failed", p.extension.Name).
					WithExtension(p.extension.Name)
			}
		}
	}
	return nil
}

// finalizePhase applies the project's settings and assignments, then
// validates with every failure fatal
func finalizePhase(_ context.Context, s *State) error {
	c := s.Context

	if len(s.Options.Settings) > 0 {
		c.Config = settings.Merge(c.Config, s.Options.Settings)
	}
	for _, assignment := range s.Options.Assignments {
		path, value, err := ParseAssignment(assignment)
		if err != nil {
			return err
		}
		if c.Config, err = settings.SetString(c.Config, c.Meta, path, value); err != nil {
			return err
		}
	}

	if err := settings.Validate(c.Config, c.Meta).Err(); err != nil {
		return err
	}

	used := append(c.UsedNames(), names(c.ProjectExtensions)...)
	c.Exports = dependencies.Summarize(c.Dependencies, used)
	c.Requirements = dependencies.Requirements(c.Dependencies, used)
	return nil
}

func names(exts []*extension.Extension) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, ext.Name)
	}
	return out
}

func withExtension(err error, name string) error {
	if rocErr, ok := err.(*errors.RocError); ok {
		return rocErr.WithExtension(name)
	}
	return errors.Wrap(err, errors.ErrInternal, "unexpected error").WithExtension(name)
}
