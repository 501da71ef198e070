package hooks

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/validators"
)

func testHooks() Hooks {
	return Hooks{}.Merge("roc-package-web", Table{
		"build-started": {
			Description: "Fired before bundling",
			Arguments: []Argument{
				{Name: "target", Validator: validators.IsString},
				{Name: "watch", Validator: validators.IsBoolean},
			},
			ReturnValue: validators.IsString,
			HasCallback: true,
		},
	})
}

func TestRunThreadsPreviousValue(t *testing.T) {
	var seen []any
	actions := []ActionGroup{
		{Extension: "a", Context: "/a", Actions: []Action{{
			Hook: "build-started",
			Func: func(_ context.Context, in Input) (any, error) {
				seen = append(seen, in.PreviousValue)
				assert.Equal(t, "web", in.Arguments["target"])
				assert.Equal(t, "/a", in.Context)
				return "first", nil
			},
		}}},
		{Extension: "b", Context: "/b", Actions: []Action{
			{
				Extension: "other-extension",
				Func: func(context.Context, Input) (any, error) {
					t.Fatal("action for another extension must not run")
					return nil, nil
				},
			},
			{
				Func: func(_ context.Context, in Input) (any, error) {
					seen = append(seen, in.PreviousValue)
					return "second", nil
				},
			},
		}},
	}

	value, err := Run(context.Background(), testHooks(), actions, "roc-package-web", "build-started", "web", true)
	require.NoError(t, err)
	assert.Equal(t, "second", value)
	assert.Equal(t, []any{nil, "first"}, seen)
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		ext     string
		hook    string
		args    []any
		actions []ActionGroup
		code    errors.ErrorCode
	}{
		{
			name: "unknown_hook",
			ext:  "roc-package-web", hook: "missing",
			code: errors.ErrHookNotFound,
		},
		{
			name: "unknown_extension",
			ext:  "roc-plugin-x", hook: "build-started",
			code: errors.ErrHookNotFound,
		},
		{
			name: "too_many_arguments",
			ext:  "roc-package-web", hook: "build-started",
			args: []any{"web", true, 3},
			code: errors.ErrHookArguments,
		},
		{
			name: "invalid_argument",
			ext:  "roc-package-web", hook: "build-started",
			args: []any{42},
			code: errors.ErrHookArguments,
		},
		{
			name: "action_fails",
			ext:  "roc-package-web", hook: "build-started",
			args: []any{"web"},
			actions: []ActionGroup{{Extension: "a", Actions: []Action{{
				Func: func(context.Context, Input) (any, error) { return nil, stderrors.New("boom") },
			}}}},
			code: errors.ErrActionExecute,
		},
		{
			name: "invalid_return_value",
			ext:  "roc-package-web", hook: "build-started",
			args: []any{"web"},
			actions: []ActionGroup{{Extension: "a", Actions: []Action{{
				Func: func(context.Context, Input) (any, error) { return 12, nil },
			}}}},
			code: errors.ErrActionExecute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(ctx, testHooks(), tt.actions, tt.ext, tt.hook, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestMergeKeepsOtherExtensions(t *testing.T) {
	hooks := testHooks().Merge("roc-plugin-style", Table{"lint": {}})
	more := hooks.Merge("roc-plugin-style", Table{"format": {}})

	assert.Equal(t, []string{"roc-package-web", "roc-plugin-style"}, more.Extensions())
	assert.Len(t, more["roc-plugin-style"], 2)
	assert.Len(t, hooks["roc-plugin-style"], 1)
}

func TestFromMap(t *testing.T) {
	table, err := FromMap(map[string]any{
		"build-started": map[string]any{
			"description": "Fired before bundling",
			"arguments":   []any{map[string]any{"name": "target", "validator": "required:isString"}},
			"returns":     "isString",
			"callback":    true,
		},
	})
	require.NoError(t, err)

	hook := table["build-started"]
	assert.Equal(t, "Fired before bundling", hook.Description)
	assert.True(t, hook.HasCallback)
	require.Len(t, hook.Arguments, 1)
	assert.True(t, hook.Arguments[0].Validator.Describe().Required)
	assert.NoError(t, hook.ReturnValue.Validate("ok"))

	_, err = FromMap(map[string]any{"bad": map[string]any{"returns": "isNothing"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrExtensionInvalid))
}
