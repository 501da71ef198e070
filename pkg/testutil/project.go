package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Project is a project directory under construction
type Project struct {
	Dir string

	t               *testing.T
	name            string
	dependencies    map[string]string
	devDependencies map[string]string
}

// NewProject creates an empty project with a package.json
func NewProject(t *testing.T) *Project {
	t.Helper()
	p := &Project{
		Dir:             t.TempDir(),
		t:               t,
		name:            "test-app",
		dependencies:    map[string]string{},
		devDependencies: map[string]string{},
	}
	t.Setenv("XDG_STATE_HOME", filepath.Join(p.Dir, ".state"))
	p.writePackageJSON()
	return p
}

// Dependency adds a dependency to the project's package.json
func (p *Project) Dependency(name, version string) *Project {
	p.t.Helper()
	p.dependencies[name] = version
	p.writePackageJSON()
	return p
}

// DevDependency adds a devDependency to the project's package.json
func (p *Project) DevDependency(name, version string) *Project {
	p.t.Helper()
	p.devDependencies[name] = version
	p.writePackageJSON()
	return p
}

// Module installs a plain module under node_modules
func (p *Project) Module(name, version string) *Project {
	p.t.Helper()
	p.WriteJSON(filepath.Join("node_modules", name, "package.json"), map[string]any{
		"name":    name,
		"version": version,
	})
	return p
}

// Extension installs an extension under node_modules with the given roc.toml
func (p *Project) Extension(name, version, manifest string) *Project {
	p.t.Helper()
	p.Module(name, version)
	p.WriteFile(filepath.Join("node_modules", name, "roc.toml"), manifest)
	return p
}

// LocalExtension creates an extension inside the project at rel
func (p *Project) LocalExtension(rel, name, manifest string) *Project {
	p.t.Helper()
	p.WriteJSON(filepath.Join(rel, "package.json"), map[string]any{"name": name, "version": "0.0.0"})
	p.WriteFile(filepath.Join(rel, "roc.toml"), manifest)
	return p
}

// Config writes roc.config.toml
func (p *Project) Config(content string) *Project {
	p.t.Helper()
	p.WriteFile("roc.config.toml", content)
	return p
}

// Path joins rel to the project directory
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Dir, rel)
}

// WriteFile writes content at rel, creating directories
func (p *Project) WriteFile(rel, content string) {
	p.t.Helper()
	path := p.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		p.t.Fatalf("failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		p.t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// WriteJSON marshals value into rel
func (p *Project) WriteJSON(rel string, value any) {
	p.t.Helper()
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		p.t.Fatalf("failed to marshal %s: %v", rel, err)
	}
	p.WriteFile(rel, string(data))
}

func (p *Project) writePackageJSON() {
	p.t.Helper()
	p.WriteJSON("package.json", map[string]any{
		"name":            p.name,
		"version":         "1.0.0",
		"dependencies":    p.dependencies,
		"devDependencies": p.devDependencies,
	})
}
