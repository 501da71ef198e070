package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/roc/pkg/commands"
	"github.com/arthur-debert/roc/pkg/dependencies"
	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/extension"
	"github.com/arthur-debert/roc/pkg/settings"
	"github.com/arthur-debert/roc/pkg/validators"
)

func staticLoader(t *testing.T, descs ...*extension.Descriptor) extension.Loader {
	t.Helper()
	loader := extension.NewStaticLoader()
	for _, desc := range descs {
		desc := desc
		require.NoError(t, loader.Register(desc.Name, func() (*extension.Descriptor, error) {
			return desc, nil
		}))
	}
	return loader
}

func refs(names ...string) []extension.Ref {
	out := make([]extension.Ref, 0, len(names))
	for _, name := range names {
		out = append(out, extension.Ref{Name: name, Type: extension.TypePackage})
	}
	return out
}

func build(t *testing.T, opts Options, descs ...*extension.Descriptor) (*Context, error) {
	t.Helper()
	opts.Loader = staticLoader(t, descs...)
	return Build(context.Background(), opts)
}

func TestBuildEndToEnd(t *testing.T) {
	pkgA := &extension.Descriptor{
		Name:   "pkgA",
		Config: settings.Tree{"settings": settings.Tree{"group": settings.Tree{"port": 8080}}},
		Meta: settings.NewMeta().Set("settings.group.port", settings.Field{
			Description: "Port", Validator: validators.IsInteger,
		}),
		Commands: commands.NewGroup(map[string]commands.Node{"start": commands.Shell("node server.js")}),
	}
	pkgB := &extension.Descriptor{
		Name:     "pkgB",
		Config:   settings.Tree{"settings": settings.Tree{"group": settings.Tree{"timeout": 30}}},
		Commands: commands.NewGroup(map[string]commands.Node{"test": commands.Shell("jest")}),
	}

	ctx, err := build(t, Options{Packages: refs("pkgA", "pkgB")}, pkgA, pkgB)
	require.NoError(t, err)

	assert.Equal(t, settings.Tree{"group": settings.Tree{"port": 8080, "timeout": 30}}, ctx.Config["settings"])
	assert.Equal(t, []string{"pkgA", "pkgB"}, ctx.UsedNames())
	assert.Equal(t, []string{"pkgA", "pkgB"}, ctx.Meta.Owners("settings.group"))
	assert.Equal(t, []string{"pkgA"}, ctx.Meta.Owners("settings.group.port"))
	assert.Equal(t, []string{"pkgA"}, ctx.Commands.Lookup("start").Owners())
	assert.Equal(t, []string{"pkgB"}, ctx.Commands.Lookup("test").Owners())
}

func TestBuildStructureCollision(t *testing.T) {
	pkgA := &extension.Descriptor{
		Name:   "pkgA",
		Config: settings.Tree{"settings": settings.Tree{"group": settings.Tree{"port": 8080}}},
	}
	pkgB := &extension.Descriptor{
		Name:   "pkgB",
		Config: settings.Tree{"settings": settings.Tree{"group": settings.Tree{"port": settings.Tree{"http": 80}}}},
	}

	_, err := build(t, Options{Packages: refs("pkgA", "pkgB")}, pkgA, pkgB)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStructureCollision))
	assert.Contains(t, err.Error(), "pkgB")
	assert.Contains(t, err.Error(), "pkgA")
	assert.Contains(t, err.Error(), "group.port")
	assert.Equal(t, "pkgB", errors.GetErrorDetails(err)["extension"])
}

func TestBuildCommandCollision(t *testing.T) {
	a := &extension.Descriptor{Name: "a", Commands: commands.NewGroup(map[string]commands.Node{"start": commands.Shell("a")})}
	b := &extension.Descriptor{Name: "b", Commands: commands.NewGroup(map[string]commands.Node{"start": commands.Shell("b")})}

	_, err := build(t, Options{Packages: refs("a"), Plugins: refs("b")}, a, b)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandCollision))
}

func TestPostInitOrder(t *testing.T) {
	var order []int
	descs := make([]*extension.Descriptor, 0, 3)
	for i, name := range []string{"one", "two", "three"} {
		n := i + 1
		descs = append(descs, &extension.Descriptor{
			Name: name,
			PostInit: func(context.Context, extension.PostInitInput) (*extension.PostInitResult, error) {
				order = append(order, n)
				return nil, nil
			},
		})
	}

	_, err := build(t, Options{Packages: refs("one", "two", "three")}, descs...)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestPostInitResults(t *testing.T) {
	var local *dependencies.Record
	foo := &extension.Descriptor{
		Name:         "foo",
		Dependencies: dependencies.Declaration{Exports: dependencies.Table{"react": {Version: "A"}}},
		PostInit: func(_ context.Context, in extension.PostInitInput) (*extension.PostInitResult, error) {
			local = in.LocalDependencies
			replacement := *in.Context
			replacement.Config = settings.Set(in.Context.Config, "settings.flag", true)
			return &extension.PostInitResult{
				Context: &replacement,
				Descriptor: &extension.Descriptor{
					Commands: commands.NewGroup(map[string]commands.Node{"late": commands.Shell("echo late")}),
					Dependencies: dependencies.Declaration{
						Exports: dependencies.Table{"ignored": {Version: "1"}},
					},
				},
			}, nil
		},
	}
	fooDev := &extension.Descriptor{
		Name: "foo-dev",
		Dependencies: dependencies.Declaration{Exports: dependencies.Table{
			"react": {Version: "B"}, "lodash": {Version: "C"},
		}},
	}

	ctx, err := build(t, Options{Packages: refs("foo", "foo-dev")}, foo, fooDev)
	require.NoError(t, err)

	require.NotNil(t, local)
	assert.Equal(t, "A", local.Exports["react"].Version)
	assert.Equal(t, "C", local.Exports["lodash"].Version)

	assert.Equal(t, true, settings.Get(ctx.Config, "settings.flag"))
	assert.Equal(t, []string{"foo"}, ctx.Commands.Lookup("late").Owners())
	assert.NotContains(t, ctx.Exports.Exports, "ignored")
	assert.Contains(t, ctx.Exports.Exports, "lodash")
}

func TestPostInitError(t *testing.T) {
	bad := &extension.Descriptor{
		Name: "bad",
		PostInit: func(context.Context, extension.PostInitInput) (*extension.PostInitResult, error) {
			return nil, errors.New(errors.ErrInternal, "nope")
		},
	}

	_, err := build(t, Options{Packages: refs("bad")}, bad)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPostInit))
	assert.Equal(t, "bad", errors.GetErrorDetails(err)["extension"])
}

func TestNestedExtensions(t *testing.T) {
	a := &extension.Descriptor{
		Name:     "a",
		Packages: refs("b"),
		Plugins:  []extension.Ref{{Name: "c", Type: extension.TypePlugin}},
	}
	b := &extension.Descriptor{Name: "b"}
	c := &extension.Descriptor{Name: "c"}

	ctx, err := build(t, Options{Packages: refs("a", "b")}, a, b, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ctx.UsedNames())
}

func TestRequirementsKeepEveryExtension(t *testing.T) {
	old := &extension.Descriptor{
		Name:         "old-pkg",
		Dependencies: dependencies.Declaration{Requires: dependencies.Table{"react": {Version: "^15.0.0"}}},
	}
	cur := &extension.Descriptor{
		Name:         "new-pkg",
		Dependencies: dependencies.Declaration{Requires: dependencies.Table{"react": {Version: "^16.0.0"}}},
	}

	ctx, err := build(t, Options{Packages: refs("old-pkg", "new-pkg")}, old, cur)
	require.NoError(t, err)

	assert.Equal(t, "^16.0.0", ctx.Exports.Requires["react"].Version)
	require.Len(t, ctx.Requirements, 2)
	assert.Equal(t, "old-pkg", ctx.Requirements[0].Extension)
	assert.Equal(t, "^15.0.0", ctx.Requirements[0].Version)
	assert.Equal(t, "new-pkg", ctx.Requirements[1].Extension)
}

func TestExtensionCycle(t *testing.T) {
	a := &extension.Descriptor{Name: "a", Packages: refs("b")}
	b := &extension.Descriptor{Name: "b", Packages: refs("a")}

	_, err := build(t, Options{Packages: refs("a")}, a, b)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtensionCycle))
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestExtensionNotFound(t *testing.T) {
	_, err := build(t, Options{Packages: refs("ghost")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtensionNotFound))
	assert.Equal(t, "ghost", errors.GetErrorDetails(err)["extension"])

	_, err = Build(context.Background(), Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRequiredSettingsAreDeferred(t *testing.T) {
	requiring := &extension.Descriptor{
		Name: "requiring",
		Meta: settings.NewMeta().Set("settings.name", settings.Field{
			Validator: validators.Required(validators.IsString),
		}),
	}
	providing := &extension.Descriptor{
		Name:   "providing",
		Config: settings.Tree{"settings": settings.Tree{"name": "app"}},
	}

	t.Run("later_extension_provides", func(t *testing.T) {
		ctx, err := build(t, Options{Packages: refs("requiring", "providing")}, requiring, providing)
		require.NoError(t, err)
		assert.Equal(t, "app", settings.Get(ctx.Config, "settings.name"))
	})

	t.Run("project_provides", func(t *testing.T) {
		_, err := build(t, Options{
			Packages: refs("requiring"),
			Settings: settings.Tree{"settings": settings.Tree{"name": "mine"}},
		}, requiring)
		require.NoError(t, err)
	})

	t.Run("nobody_provides", func(t *testing.T) {
		_, err := build(t, Options{Packages: refs("requiring")}, requiring)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSettingsRequired))
	})
}

func TestInvalidSettingsAreFatal(t *testing.T) {
	typed := &extension.Descriptor{
		Name:   "typed",
		Config: settings.Tree{"settings": settings.Tree{"port": "not a number"}},
		Meta:   settings.NewMeta().Set("settings.port", settings.Field{Validator: validators.IsInteger}),
	}

	_, err := build(t, Options{Packages: refs("typed")}, typed)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSettingsInvalid))
	assert.Equal(t, "typed", errors.GetErrorDetails(err)["extension"])
}

func TestAssignments(t *testing.T) {
	web := &extension.Descriptor{
		Name:   "web",
		Config: settings.Tree{"settings": settings.Tree{"port": 3000}},
		Meta:   settings.NewMeta().Set("settings.port", settings.Field{Validator: validators.IsInteger}),
	}

	ctx, err := build(t, Options{Packages: refs("web"), Assignments: []string{"settings.port=9000"}}, web)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), settings.Get(ctx.Config, "settings.port"))

	_, err = build(t, Options{Packages: refs("web"), Assignments: []string{"settings.port=abc"}}, web)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSettingsInvalid))

	_, err = build(t, Options{Packages: refs("web"), Assignments: []string{"no-equals"}}, web)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestProjectExtensions(t *testing.T) {
	base := &extension.Descriptor{Name: "base", Config: settings.Tree{"settings": settings.Tree{"a": 1}}}
	local := &extension.Descriptor{Name: "local", Config: settings.Tree{"settings": settings.Tree{"b": 2}}}

	ctx, err := build(t, Options{Packages: refs("base"), ProjectExtensions: refs("local")}, base, local)
	require.NoError(t, err)
	assert.Equal(t, []string{"base"}, ctx.UsedNames())
	require.Len(t, ctx.ProjectExtensions, 1)
	assert.Equal(t, 2, settings.Get(ctx.Config, "settings.b"))
}
