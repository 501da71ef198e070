package extension

import (
	"context"

	"github.com/arthur-debert/roc/pkg/commands"
	"github.com/arthur-debert/roc/pkg/dependencies"
	"github.com/arthur-debert/roc/pkg/hooks"
	"github.com/arthur-debert/roc/pkg/packagejson"
	"github.com/arthur-debert/roc/pkg/settings"
)

// Type distinguishes packages from plugins
type Type string

const (
	TypePackage Type = "package"
	TypePlugin  Type = "plugin"
	// TypeProject is used for extensions the project itself defines
	TypeProject Type = "project"
)

// Ref names an extension to load
type Ref struct {
	Name string
	Type Type
	// Path is an explicit directory, otherwise the loader decides
	Path string
}

func (r Ref) String() string {
	if r.Path != "" {
		return r.Name + " (" + r.Path + ")"
	}
	return r.Name
}

// Extension is a loaded extension
type Extension struct {
	Name    string
	Version string
	// Path is the directory the extension lives in, empty for compiled-in ones
	Path        string
	Type        Type
	PackageJSON *packagejson.Package
	// Standalone extensions are not installed as modules of the project
	Standalone bool
	Descriptor *Descriptor
}

// Descriptor is what an extension contributes
type Descriptor struct {
	Name         string
	Version      string
	Config       settings.Tree
	Meta         *settings.Meta
	Commands     *commands.Group
	Hooks        hooks.Table
	Actions      []hooks.Action
	Dependencies dependencies.Declaration
	PostInit     PostInitFunc

	// Packages and Plugins are loaded before the extension itself
	Packages []Ref
	Plugins  []Ref
}

// Context is the accumulated result of a build
type Context struct {
	Config       settings.Tree
	Meta         *settings.Meta
	Commands     *commands.Group
	Hooks        hooks.Hooks
	Actions      []hooks.ActionGroup
	Dependencies dependencies.Context

	UsedExtensions    []*Extension
	ProjectExtensions []*Extension

	// Exports is the summary of every extension's dependency tables, in load
	// order with later extensions winning
	Exports dependencies.Declaration
	// Requirements keeps every requires entry of every extension, unmerged
	Requirements []dependencies.Requirement
}

// NewContext returns an empty context
func NewContext() *Context {
	return &Context{
		Config:       settings.Tree{},
		Meta:         settings.NewMeta(),
		Commands:     commands.NewGroup(nil),
		Hooks:        hooks.Hooks{},
		Dependencies: dependencies.NewContext(),
	}
}

// UsedNames returns the names of the used extensions in load order
func (c *Context) UsedNames() []string {
	names := make([]string, 0, len(c.UsedExtensions))
	for _, ext := range c.UsedExtensions {
		names = append(names, ext.Name)
	}
	return names
}

// Used returns the used extension called name
func (c *Context) Used(name string) *Extension {
	for _, ext := range c.UsedExtensions {
		if ext.Name == name {
			return ext
		}
	}
	return nil
}

// PostInitInput is what a post-init callback receives
type PostInitInput struct {
	Context *Context
	// LocalDependencies is the dependency record of the extension itself
	LocalDependencies *dependencies.Record
}

// PostInitResult is what a post-init callback may return. Descriptor is
// merged like a regular contribution, Context replaces the accumulated one.
type PostInitResult struct {
	Descriptor *Descriptor
	Context    *Context
}

// PostInitFunc runs after every extension has been merged. A nil result
// changes nothing.
type PostInitFunc func(ctx context.Context, in PostInitInput) (*PostInitResult, error)
