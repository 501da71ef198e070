package roc

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/roc/pkg/build"
	"github.com/arthur-debert/roc/pkg/config"
	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/testutil"
)

const webManifest = `
[config.settings.dev]
port = 3000

[meta."settings.dev.port"]
description = "Port of the dev server"
validator = "isInteger"

[commands.dev]
command = 'echo "$ROC_CONFIG_SETTINGS"'
description = "Start the dev server"
settings = ["dev"]

[hooks.before-build]
description = "Runs before every build"
arguments = [{ name = "target", validator = "isString" }]

[[actions]]
hook = "before-build"
extension = "roc-package-web"
command = 'echo "building $ROC_HOOK_ARG_TARGET"'

[dependencies.requires]
react = "^18.0.0"
webpack = "^5.0.0"
`

// unmetProject declares react but not webpack, which roc-package-web requires
func unmetProject(t *testing.T) *testutil.Project {
	t.Helper()
	return testutil.NewProject(t).
		DevDependency("roc-package-web", "^1.0.0").
		Dependency("react", "^18.0.0").
		Module("react", "18.2.0").
		Extension("roc-package-web", "1.0.0", webManifest)
}

func webProject(t *testing.T) *testutil.Project {
	t.Helper()
	return unmetProject(t).Dependency("webpack", "^5.1.0").Module("webpack", "5.90.0")
}

// runApp executes roc in dir and returns everything written to stdout and stderr
func runApp(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := NewApp()
	app.Current = build.NewCurrentWithEnv(func(string) (string, bool) { return "", false })
	app.Out = &out
	app.Err = &out
	app.Executor.Stdout = &out
	app.Executor.Stderr = &out

	err := app.Execute(context.Background(), append([]string{"--dir", dir}, args...))
	return out.String(), err
}

func TestSettingsCommand(t *testing.T) {
	p := webProject(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"group", []string{"settings", "settings.dev"}, "port: 3000\n"},
		{"value", []string{"settings", "settings.dev.port"}, "3000\n"},
		{"set flag", []string{"--set", "settings.dev.port=4000", "settings", "settings.dev"}, "port: 4000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, p.Dir, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSettingsCommandProjectSettings(t *testing.T) {
	p := webProject(t).Config(`
[settings.dev]
port = 8000
`)

	out, err := runApp(t, p.Dir, "settings", "settings.dev.port")
	require.NoError(t, err)
	assert.Equal(t, "8000\n", out)
}

func TestSettingsMeta(t *testing.T) {
	p := webProject(t)

	out, err := runApp(t, p.Dir, "settings", "--meta")
	require.NoError(t, err)
	assert.Contains(t, out, "settings.dev.port (integer) Port of the dev server [roc-package-web]")
}

func TestSettingsUnknownPath(t *testing.T) {
	p := webProject(t)

	_, err := runApp(t, p.Dir, "settings", "settings.nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestExtensionsCommand(t *testing.T) {
	p := webProject(t)

	out, err := runApp(t, p.Dir, "extensions")
	require.NoError(t, err)
	assert.Contains(t, out, "Extensions:")
	assert.Contains(t, out, "roc-package-web 1.0.0 package")
}

func TestPackageFlagReplacesDiscovery(t *testing.T) {
	p := webProject(t).Extension("roc-package-other", "2.0.0", `
[config.settings.other]
enabled = true
`)

	out, err := runApp(t, p.Dir, "--package", "roc-package-other", "extensions")
	require.NoError(t, err)
	assert.Contains(t, out, "roc-package-other 2.0.0 package")
	assert.NotContains(t, out, "roc-package-web")
}

func TestExtensionCommandRuns(t *testing.T) {
	p := webProject(t)

	out, err := runApp(t, p.Dir, "dev", "--dev.port", "5000")
	require.NoError(t, err)
	assert.Contains(t, out, `"port":5000`)
}

func TestDepsVerify(t *testing.T) {
	p := unmetProject(t)

	out, err := runApp(t, p.Dir, "deps", "verify")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDependencyMismatch))
	assert.Contains(t, out, "Unmet requirements:")
	assert.Contains(t, out, "webpack@^5.0.0")
	assert.Contains(t, out, "missing")
	assert.NotContains(t, out, "react@")
}

func TestDepsVerifySatisfied(t *testing.T) {
	p := webProject(t)

	out, err := runApp(t, p.Dir, "deps", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "All 2 requirement(s) are met.")
}

func TestUnmetRequirementsFailCommands(t *testing.T) {
	p := unmetProject(t)

	tests := []struct {
		name string
		args []string
	}{
		{"extension command", []string{"dev"}},
		{"settings", []string{"settings", "settings.dev.port"}},
		{"hooks", []string{"hooks", "list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(t, p.Dir, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrDependencyMismatch))
			assert.Contains(t, err.Error(), "webpack@^5.0.0 required by roc-package-web")
			assert.Empty(t, out)
		})
	}

	out, err := runApp(t, p.Dir, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "roc dev")
}

func TestUnmetRequirementsOptOut(t *testing.T) {
	p := unmetProject(t).Config(`
[verify]
dependencies = false
`)

	out, err := runApp(t, p.Dir, "settings", "settings.dev.port")
	require.NoError(t, err)
	assert.Equal(t, "3000\n", out)
}

func TestDepsVerifyConflictingRanges(t *testing.T) {
	p := webProject(t).Extension("roc-package-legacy", "1.0.0", `
[dependencies.requires]
react = "^15.0.0"
`).DevDependency("roc-package-legacy", "^1.0.0")

	out, err := runApp(t, p.Dir, "deps", "verify")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDependencyMismatch))
	assert.Contains(t, out, "react@^15.0.0")
	assert.Contains(t, out, "(roc-package-legacy)")
	assert.NotContains(t, out, "react@^18.0.0")
}

func TestDepsExports(t *testing.T) {
	p := webProject(t)

	out, err := runApp(t, p.Dir, "deps", "exports")
	require.NoError(t, err)
	assert.Contains(t, out, "requires:")
	assert.Contains(t, out, "webpack:")
	assert.Contains(t, out, "version: ^5.0.0")
	assert.Contains(t, out, "extension: roc-package-web")
	assert.NotContains(t, out, "exports:")
}

func TestHooksCommands(t *testing.T) {
	p := webProject(t)

	t.Run("list", func(t *testing.T) {
		out, err := runApp(t, p.Dir, "hooks", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "roc-package-web:")
		assert.Contains(t, out, "  before-build - Runs before every build")
	})

	t.Run("run", func(t *testing.T) {
		out, err := runApp(t, p.Dir, "hooks", "run", "roc-package-web", "before-build", "production")
		require.NoError(t, err)
		assert.Contains(t, out, "building production")
	})

	t.Run("unknown hook", func(t *testing.T) {
		_, err := runApp(t, p.Dir, "hooks", "run", "roc-package-web", "after-build")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrHookNotFound))
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := runApp(t, p.Dir, "hooks", "run", "roc-package-web", "before-build", "a", "b")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrHookArguments))
	})
}

func TestConfigInit(t *testing.T) {
	p := webProject(t)
	path := filepath.Join(p.Dir, config.FileName)

	out, err := runApp(t, p.Dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultContent(), string(data))

	_, err = runApp(t, p.Dir, "config", "init")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, err = runApp(t, p.Dir, "config", "init", "--force")
	require.NoError(t, err)
}

func TestBuiltinsWithoutProject(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, ".state"))

	out, err := runApp(t, dir, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "roc dev")

	_, err = runApp(t, dir, "settings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load the project")

	_, err = runApp(t, dir, "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.Contains(t, err.Error(), "failed to load the project")
}

func TestRootWithoutCommand(t *testing.T) {
	p := unmetProject(t)

	out, err := runApp(t, p.Dir)
	require.Error(t, err)
	assert.Equal(t, MsgErrNoCommand, err.Error())
	assert.Contains(t, out, "roc")
}

func TestHelpTopics(t *testing.T) {
	p := webProject(t)
	t.Setenv("NO_COLOR", "1")

	out, err := runApp(t, p.Dir, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "manifest")
	assert.Contains(t, out, "--set")

	out, err = runApp(t, p.Dir, "help", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "converted with the validator")
}

func TestScanGlobalFlags(t *testing.T) {
	g := scanGlobalFlags([]string{"-vv", "--dir", "/p", "build", "--watch", "--set", "a=1", "--set", "b=2", "--plugin", "x", "--", "--set", "c=3"})

	assert.Equal(t, 2, g.verbosity)
	assert.Equal(t, "/p", g.dir)
	assert.Equal(t, []string{"a=1", "b=2"}, g.sets)
	assert.Equal(t, map[string]interface{}{"plugins": []string{"x"}}, g.overrides())
}
