// Package hooks holds the hook definitions extensions publish and the
// actions other extensions attach to them.
package hooks

import (
	"context"
	"sort"

	"github.com/arthur-debert/roc/pkg/validators"
)

// Argument describes one positional argument a hook is fired with
type Argument struct {
	Name        string
	Description string
	Validator   validators.Validator
}

// Hook is a named extension point
type Hook struct {
	Description string
	Arguments   []Argument
	// ReturnValue validates what actions return, nil accepts anything
	ReturnValue validators.Validator
	// HasCallback marks hooks whose caller consumes the returned value
	HasCallback bool
}

// Table maps hook names to definitions for one extension
type Table map[string]Hook

// Hooks maps extension names to the hooks they define
type Hooks map[string]Table

// Merge returns a copy of hooks with the table of extension replaced
func (h Hooks) Merge(extension string, table Table) Hooks {
	out := make(Hooks, len(h)+1)
	for ext, t := range h {
		out[ext] = t
	}
	if len(table) == 0 {
		return out
	}
	merged := make(Table, len(out[extension])+len(table))
	for name, hook := range out[extension] {
		merged[name] = hook
	}
	for name, hook := range table {
		merged[name] = hook
	}
	out[extension] = merged
	return out
}

// Lookup returns the definition of hook published by extension
func (h Hooks) Lookup(extension, hook string) (Hook, bool) {
	def, ok := h[extension][hook]
	return def, ok
}

// Extensions returns the extensions that define hooks, sorted
func (h Hooks) Extensions() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Input is what an action receives when a hook fires
type Input struct {
	Extension string
	Hook      string
	Arguments map[string]any
	// PreviousValue is the value returned by the previous action, if any
	PreviousValue any
	// Context is the path of the extension that registered the action
	Context string
}

// ActionFunc runs when a matching hook fires
type ActionFunc func(ctx context.Context, in Input) (any, error)

// Action attaches a function to hooks. An empty Hook matches every hook
// and an empty Extension matches hooks from every extension.
type Action struct {
	Hook        string
	Extension   string
	Description string
	Func        ActionFunc
}

// Matches reports whether the action should run for hook fired by extension
func (a Action) Matches(extension, hook string) bool {
	return (a.Hook == "" || a.Hook == hook) && (a.Extension == "" || a.Extension == extension)
}

// ActionGroup is the list of actions one extension registered
type ActionGroup struct {
	Extension string
	Context   string
	Actions   []Action
}
