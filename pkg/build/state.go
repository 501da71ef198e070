package build

import (
	"github.com/arthur-debert/roc/pkg/dependencies"
	"github.com/arthur-debert/roc/pkg/extension"
)

// Context is the accumulated result of a build
type Context = extension.Context

type postInit struct {
	extension *extension.Extension
	fn        extension.PostInitFunc
}

// State is threaded through the phases of one build
type State struct {
	Options Options
	Context *Context

	// loaded holds the extensions in merge order
	loaded []*extension.Extension
	seen   map[string]bool

	postInits     []postInit
	devExports    map[string]dependencies.Table
	normalExports map[string]dependencies.Table
}

// NewState prepares an empty state for opts
func NewState(opts Options) *State {
	return &State{
		Options:       opts,
		Context:       extension.NewContext(),
		seen:          make(map[string]bool),
		devExports:    make(map[string]dependencies.Table),
		normalExports: make(map[string]dependencies.Table),
	}
}

// Loaded returns the extensions in merge order
func (s *State) Loaded() []*extension.Extension {
	return s.loaded
}

func (s *State) usedNames() []string {
	names := make([]string, 0, len(s.loaded))
	for _, ext := range s.loaded {
		names = append(names, ext.Name)
	}
	return names
}
