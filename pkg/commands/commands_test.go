package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/settings"
)

func TestNormalizeLeaf(t *testing.T) {
	raw := NewGroup(map[string]Node{"run": Shell("git log")})

	got, err := Normalize("ext", "/p", raw, nil)
	require.NoError(t, err)

	leaf, ok := got.Children["run"].(*Leaf)
	require.True(t, ok)
	assert.Equal(t, "git log", leaf.Command.Shell)
	assert.Equal(t, "/p", leaf.Context)
	assert.Equal(t, []string{"ext"}, leaf.Extensions)
	assert.Equal(t, []string{"ext"}, got.Extensions)

	t.Run("idempotent", func(t *testing.T) {
		again, err := Normalize("ext", "/p", raw, got)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	})
}

func TestNormalizeDoesNotMutate(t *testing.T) {
	raw := NewGroup(map[string]Node{"run": Shell("git log")})
	existing, err := Normalize("a", "/a", raw, nil)
	require.NoError(t, err)

	_, err = Normalize("b", "/b", NewGroup(map[string]Node{"test": Shell("go test")}), existing)
	require.NoError(t, err)

	assert.Nil(t, existing.Children["test"])
	assert.Equal(t, []string{"a"}, existing.Extensions)
	assert.Empty(t, raw.Children["run"].(*Leaf).Context)
}

func TestNormalizeCollisions(t *testing.T) {
	base := func(t *testing.T) *Group {
		t.Helper()
		tree, err := Normalize("pkgA", "/a", NewGroup(map[string]Node{
			"build": NewGroup(map[string]Node{"web": Shell("webpack")}),
			"lint":  Shell("eslint ."),
		}), nil)
		require.NoError(t, err)
		return tree
	}

	t.Run("same_extension_redefines", func(t *testing.T) {
		tree, err := Normalize("pkgA", "/a", NewGroup(map[string]Node{"lint": Shell("eslint src")}), base(t))
		require.NoError(t, err)
		leaf := tree.Lookup("lint").(*Leaf)
		assert.Equal(t, "eslint src", leaf.Command.Shell)
		assert.Equal(t, []string{"pkgA"}, leaf.Extensions)
	})

	t.Run("other_extension_fails", func(t *testing.T) {
		_, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{"lint": Shell("tslint")}), base(t))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandCollision))
		assert.Contains(t, err.Error(), `"pkgB"`)
		assert.Contains(t, err.Error(), "[pkgA]")
		assert.Equal(t, "pkgB", errors.GetErrorDetails(err)["extension"])
	})

	t.Run("override_replaces", func(t *testing.T) {
		lint := Shell("tslint")
		lint.Override = settings.OverrideOf("pkgA")
		tree, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{"lint": lint}), base(t))
		require.NoError(t, err)
		leaf := tree.Lookup("lint").(*Leaf)
		assert.Equal(t, "tslint", leaf.Command.Shell)
		assert.Equal(t, "/b", leaf.Context)
		assert.Equal(t, []string{"pkgA", "pkgB"}, leaf.Extensions)
		assert.True(t, leaf.Override.IsZero())
	})

	t.Run("override_naming_stranger_fails", func(t *testing.T) {
		lint := Shell("tslint")
		lint.Override = settings.OverrideOf("pkgC")
		_, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{"lint": lint}), base(t))
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandCollision))
	})

	t.Run("groups_merge", func(t *testing.T) {
		tree, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{
			"build": NewGroup(map[string]Node{"docs": Shell("mkdocs build")}),
		}), base(t))
		require.NoError(t, err)
		assert.Equal(t, []string{"pkgA", "pkgB"}, tree.Lookup("build").Owners())
		assert.Equal(t, "/a", tree.Lookup("build", "web").(*Leaf).Context)
		assert.Equal(t, "/b", tree.Lookup("build", "docs").(*Leaf).Context)
	})

	t.Run("leaf_over_group_needs_override", func(t *testing.T) {
		_, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{"build": Shell("make")}), base(t))
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandCollision))

		build := Shell("make")
		build.Override = settings.OverrideAll()
		tree, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{"build": build}), base(t))
		require.NoError(t, err)
		assert.Equal(t, []string{"pkgB"}, tree.Lookup("build").Owners())
	})

	t.Run("group_over_leaf_needs_override", func(t *testing.T) {
		group := NewGroup(map[string]Node{"js": Shell("eslint")})
		_, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{"lint": group}), base(t))
		assert.True(t, errors.IsErrorCode(err, errors.ErrCommandCollision))

		group.Override = settings.OverrideOf("pkgA")
		tree, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{"lint": group}), base(t))
		require.NoError(t, err)
		assert.Equal(t, "eslint", tree.Lookup("lint", "js").(*Leaf).Command.Shell)
	})
}

func TestNormalizeNilNodes(t *testing.T) {
	existing, err := Normalize("pkgA", "/a", NewGroup(map[string]Node{"lint": Shell("eslint .")}), nil)
	require.NoError(t, err)

	var nilLeaf *Leaf
	var nilGroup *Group
	tests := []struct {
		name     string
		key      string
		node     Node
		existing *Group
	}{
		{"nil_leaf_over_existing", "lint", nilLeaf, existing},
		{"nil_group_over_existing", "lint", nilGroup, existing},
		{"nil_leaf_fresh", "test", nilLeaf, nil},
		{"nil_interface_fresh", "test", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize("pkgB", "/b", NewGroup(map[string]Node{tt.key: tt.node}), tt.existing)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrExtensionInvalid))
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestFuncLeaf(t *testing.T) {
	called := false
	raw := NewGroup(map[string]Node{"hello": Run(func(ctx context.Context, inv *Invocation) error {
		called = true
		assert.Equal(t, "/p", inv.Context)
		return nil
	})})

	tree, err := Normalize("ext", "/p", raw, nil)
	require.NoError(t, err)

	leaf := tree.Lookup("hello").(*Leaf)
	require.NoError(t, leaf.Command.Func(context.Background(), &Invocation{Context: leaf.Context}))
	assert.True(t, called)
}

func TestWalk(t *testing.T) {
	tree := NewGroup(map[string]Node{
		"b": Shell("b"),
		"a": NewGroup(map[string]Node{"y": Shell("y"), "x": Shell("x")}),
	})

	var paths [][]string
	tree.Walk(func(path []string, _ Node) { paths = append(paths, path) })
	assert.Equal(t, [][]string{{"a"}, {"a", "x"}, {"a", "y"}, {"b"}}, paths)
	assert.Nil(t, tree.Lookup("b", "deeper"))
	assert.Nil(t, tree.Lookup("missing"))
}

func TestFromMap(t *testing.T) {
	tree, err := FromMap(map[string]any{
		"start": "node server.js",
		"build": map[string]any{
			"__meta": map[string]any{"description": "Build targets"},
			"web": map[string]any{
				"command":     "webpack",
				"description": "Bundle the app",
				"settings":    true,
				"override":    "roc-package-base",
				"options": []any{
					map[string]any{"name": "port", "alias": "p", "validator": "isInteger", "default": int64(3000)},
				},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "node server.js", tree.Lookup("start").(*Leaf).Command.Shell)
	build := tree.Lookup("build").(*Group)
	assert.Equal(t, "Build targets", build.Description)

	web := tree.Lookup("build", "web").(*Leaf)
	assert.Equal(t, "webpack", web.Command.Shell)
	assert.Equal(t, []string{"*"}, web.Settings)
	assert.Equal(t, settings.OverrideOf("roc-package-base"), web.Override)
	require.Len(t, web.Options, 1)
	assert.Equal(t, "p", web.Options[0].Alias)
	require.NotNil(t, web.Options[0].Validator)
	assert.Error(t, web.Options[0].Validator.Validate("nope"))

	_, err = FromMap(map[string]any{"bad": 3})
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtensionInvalid))
}
