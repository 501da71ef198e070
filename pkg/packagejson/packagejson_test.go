package packagejson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/roc/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{
		"name": "my-app",
		"version": "1.0.0",
		"dependencies": {"react": "^18.0.0"},
		"devDependencies": {"roc-package-web": "^1.0.0", "react": "^18.0.0"}
	}`)

	pkg, err := ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "my-app", pkg.Name)
	assert.Equal(t, dir, pkg.Dir)
	assert.True(t, pkg.HasDependency("react"))
	assert.False(t, pkg.HasDependency("roc-package-web"))
	assert.True(t, pkg.Declares("roc-package-web"))
	assert.Equal(t, []string{"react", "roc-package-web"}, pkg.DependencyNames())
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadDir(dir)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	writeFile(t, filepath.Join(dir, FileName), `{"name": `)
	_, err = ReadDir(dir)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackageJSON))
}

func TestInstalled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(ModuleDir(dir, "@scope/lib"), FileName), `{"name": "@scope/lib", "version": "2.1.0"}`)

	pkg, err := Installed(dir, "@scope/lib")
	require.NoError(t, err)
	require.NotNil(t, pkg)
	assert.Equal(t, "2.1.0", pkg.Version)

	pkg, err = Installed(dir, "absent")
	assert.NoError(t, err)
	assert.Nil(t, pkg)
}

func TestNilPackage(t *testing.T) {
	var pkg *Package
	assert.False(t, pkg.HasDependency("x"))
	assert.False(t, pkg.Declares("x"))
	assert.Nil(t, pkg.DependencyNames())
}
