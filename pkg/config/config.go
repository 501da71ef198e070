package config

import (
	"github.com/arthur-debert/roc/pkg/extension"
	"github.com/arthur-debert/roc/pkg/settings"
)

// FileName is the project configuration file
const FileName = "roc.config.toml"

// Config is roc's configuration for one project
type Config struct {
	Packages          []string               `koanf:"packages"`
	Plugins           []string               `koanf:"plugins"`
	ProjectExtensions []string               `koanf:"project_extensions"`
	Patterns          Patterns               `koanf:"patterns"`
	Verify            Verify                 `koanf:"verify"`
	Settings          map[string]interface{} `koanf:"settings"`

	// ProjectDir is where the configuration was loaded for
	ProjectDir string `koanf:"-"`
}

// Patterns select extensions among the project's dependencies
type Patterns struct {
	Packages string `koanf:"packages"`
	Plugins  string `koanf:"plugins"`
}

// Verify controls the dependency check
type Verify struct {
	Dependencies bool `koanf:"dependencies"`
}

// Selection returns the explicitly listed extensions
func (c *Config) Selection() extension.Selection {
	return extension.Selection{Packages: nilIfEmpty(c.Packages), Plugins: nilIfEmpty(c.Plugins)}
}

// nilIfEmpty maps the empty lists of the defaults to "not selected"
func nilIfEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}

// ExtensionPatterns returns the discovery patterns
func (c *Config) ExtensionPatterns() extension.Patterns {
	return extension.Patterns{Packages: c.Patterns.Packages, Plugins: c.Patterns.Plugins}
}

// ProjectRefs returns references to the project's own extensions
func (c *Config) ProjectRefs() []extension.Ref {
	return extension.ParseRefs(c.ProjectExtensions, extension.TypeProject, c.ProjectDir)
}

// SettingsTree returns the project settings rooted the way extensions root
// their config
func (c *Config) SettingsTree() settings.Tree {
	if len(c.Settings) == 0 {
		return nil
	}
	return settings.Tree{"settings": settings.Copy(c.Settings)}
}
