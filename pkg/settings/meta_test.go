package settings

import (
	"testing"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridePermits(t *testing.T) {
	owners := []string{"a"}

	tests := []struct {
		name      string
		override  Override
		extension string
		want      bool
	}{
		{"same extension", Override{}, "a", true},
		{"other without override", Override{}, "b", false},
		{"blanket override", OverrideAll(), "b", true},
		{"targeted override of owner", OverrideOf("a"), "b", true},
		{"targeted override of stranger", OverrideOf("c"), "b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.override.Permits(tt.extension, owners))
		})
	}
}

func TestParseOverride(t *testing.T) {
	o, err := ParseOverride(true)
	require.NoError(t, err)
	assert.Equal(t, OverrideAll(), o)

	o, err = ParseOverride("roc-package-base")
	require.NoError(t, err)
	assert.Equal(t, "roc-package-base", o.String())

	o, err = ParseOverride(nil)
	require.NoError(t, err)
	assert.True(t, o.IsZero())

	_, err = ParseOverride(3)
	assert.Error(t, err)
}

func TestMetaSetLookup(t *testing.T) {
	meta := NewMeta().
		Set("settings.group.port", Field{Description: "Port", Validator: validators.IsInteger}).
		Set("settings.group", Field{Description: "Group"})

	assert.Equal(t, "Port", meta.Lookup("settings.group.port").Description)
	assert.Equal(t, "Group", meta.Lookup("settings.group").Description)
	assert.Nil(t, meta.Lookup("settings.other"))
	assert.True(t, meta.Lookup("settings.group.port").IsLeaf())

	var visited []string
	meta.Walk(func(path string, _ *Meta) { visited = append(visited, path) })
	assert.Equal(t, []string{"settings", "settings.group", "settings.group.port"}, visited)
}

func TestMergeMeta(t *testing.T) {
	base := NewMeta().Set("settings.port", Field{Description: "old", Validator: validators.IsInteger})
	base.Lookup("settings.port").Extensions = []string{"a"}

	patch := NewMeta().Set("settings.port", Field{Description: "new", Override: OverrideOf("a")})
	patch.Lookup("settings.port").Extensions = []string{"a", "b"}

	merged := MergeMeta(base, patch)
	node := merged.Lookup("settings.port")

	assert.Equal(t, "new", node.Description)
	assert.Equal(t, validators.IsInteger, node.Validator)
	assert.Equal(t, []string{"a", "b"}, node.Extensions)
	assert.True(t, node.Override.IsZero())
	assert.Equal(t, []string{"a"}, base.Lookup("settings.port").Extensions)
}

func TestValidate(t *testing.T) {
	meta := NewMeta().
		Set("settings.port", Field{Validator: validators.Required(validators.IsInteger)}).
		Set("settings.host", Field{Validator: validators.Required(validators.IsString)}).
		Set("settings.debug", Field{Validator: validators.IsBoolean})

	t.Run("only_required_missing", func(t *testing.T) {
		errs := Validate(Tree{"settings": map[string]any{"port": 1}}, meta)
		require.Len(t, errs, 1)
		assert.True(t, errs.OnlyRequired())
		assert.Equal(t, []string{"settings.host"}, errs.Paths())
		assert.True(t, errors.IsErrorCode(errs.Err(), errors.ErrSettingsRequired))
	})

	t.Run("invalid_value", func(t *testing.T) {
		errs := Validate(Tree{"settings": map[string]any{"port": "x", "host": "h", "debug": "no"}}, meta)
		require.Len(t, errs, 2)
		assert.False(t, errs.OnlyRequired())
		assert.Equal(t, []string{"settings.debug", "settings.port"}, errs.Paths())
		assert.True(t, errors.IsErrorCode(errs.Err(), errors.ErrSettingsInvalid))
	})

	t.Run("all_valid", func(t *testing.T) {
		errs := Validate(Tree{"settings": map[string]any{"port": 1, "host": "h"}}, meta)
		assert.Empty(t, errs)
		assert.NoError(t, errs.Err())
	})
}

func TestSetString(t *testing.T) {
	meta := NewMeta().
		Set("settings.port", Field{Validator: validators.IsInteger}).
		Set("settings.obj", Field{Validator: validators.IsObject(nil)})

	tree, err := SetString(Tree{}, meta, "settings.port", "9000")
	require.NoError(t, err)
	assert.Equal(t, int64(9000), Get(tree, "settings.port"))

	tree, err = SetString(tree, meta, "settings.free", "text")
	require.NoError(t, err)
	assert.Equal(t, "text", Get(tree, "settings.free"))

	_, err = SetString(tree, meta, "settings.port", "abc")
	assert.True(t, errors.IsErrorCode(err, errors.ErrSettingsInvalid))

	_, err = SetString(tree, meta, "settings.obj", "{}")
	assert.True(t, errors.IsErrorCode(err, errors.ErrSettingsInvalid))
}
