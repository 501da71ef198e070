// Package packagejson reads the package.json files of a project and of the
// modules installed under its node_modules directory.
package packagejson

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/roc/pkg/errors"
)

// FileName is the manifest file name
const FileName = "package.json"

// ModulesDir is the directory installed modules live in
const ModulesDir = "node_modules"

// Package is the subset of package.json roc reads
type Package struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Main            string            `json:"main,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`

	// Dir is the directory the file was read from
	Dir string `json:"-"`
}

// Read parses the package.json at path
func Read(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "no %s at %s", FileName, path).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrPackageJSON, "failed to read %s", path).
			WithDetail("path", path)
	}

	var pkg Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPackageJSON, "failed to parse %s", path).
			WithDetail("path", path)
	}
	pkg.Dir = filepath.Dir(path)
	return &pkg, nil
}

// ReadDir parses the package.json inside dir
func ReadDir(dir string) (*Package, error) {
	return Read(filepath.Join(dir, FileName))
}

// ModuleDir returns where module name is installed for the project in projectDir
func ModuleDir(projectDir, name string) string {
	return filepath.Join(projectDir, ModulesDir, filepath.FromSlash(name))
}

// Installed reads the package.json of module name installed in projectDir.
// It returns nil and no error when the module is not installed.
func Installed(projectDir, name string) (*Package, error) {
	pkg, err := ReadDir(ModuleDir(projectDir, name))
	if errors.IsErrorCode(err, errors.ErrNotFound) {
		return nil, nil
	}
	return pkg, err
}

// HasDependency reports whether name is a direct dependency
func (p *Package) HasDependency(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Dependencies[name]
	return ok
}

// Declares reports whether name is listed in dependencies or devDependencies
func (p *Package) Declares(name string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	_, ok := p.DevDependencies[name]
	return ok
}

// DependencyNames returns the names of dependencies and devDependencies, sorted
func (p *Package) DependencyNames() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]bool, len(p.Dependencies)+len(p.DevDependencies))
	for name := range p.Dependencies {
		seen[name] = true
	}
	for name := range p.DevDependencies {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
