package commands

import (
	"context"
	"sort"

	"github.com/arthur-debert/roc/pkg/settings"
	"github.com/arthur-debert/roc/pkg/validators"
)

// Node is either a *Leaf or a *Group
type Node interface {
	// Owners returns the extensions that contributed to the node
	Owners() []string
	node()
}

// Func is a command implemented in Go
type Func func(ctx context.Context, inv *Invocation) error

// Command is what a leaf runs: a shell line or a Go function
type Command struct {
	Shell string
	Func  Func
}

// IsZero reports whether the command does nothing
func (c Command) IsZero() bool {
	return c.Shell == "" && c.Func == nil
}

// Argument is a positional argument of a leaf command
type Argument struct {
	Name        string
	Description string
	Validator   validators.Validator
	Default     any
}

// Option is a named flag of a leaf command
type Option struct {
	Name        string
	Alias       string
	Description string
	Validator   validators.Validator
	Default     any
}

// Invocation carries what a command receives when executed
type Invocation struct {
	// Path is the command path, e.g. ["build", "web"]
	Path      []string
	Arguments map[string]any
	Options   map[string]any
	// Extra holds arguments after "--"
	Extra []string
	// Settings is the final settings tree
	Settings settings.Tree
	// Context is the path of the extension that defined the command
	Context string
}

// Leaf is an executable command
type Leaf struct {
	Command     Command
	Description string
	Help        string
	Arguments   []Argument
	Options     []Option
	// Settings lists settings groups exposed as options, "*" for all
	Settings []string
	Override settings.Override

	// Context is the path of the extension that defined the command
	Context string
	// Extensions is the provenance list
	Extensions []string
}

func (l *Leaf) Owners() []string { return l.Extensions }
func (*Leaf) node()              {}

// Group is a named set of commands
type Group struct {
	Name        string
	Description string
	Children    map[string]Node
	Override    settings.Override

	Extensions []string
}

func (g *Group) Owners() []string { return g.Extensions }
func (*Group) node()              {}

// Shell returns a leaf running a shell line
func Shell(line string) *Leaf {
	return &Leaf{Command: Command{Shell: line}}
}

// Run returns a leaf running a Go function
func Run(fn Func) *Leaf {
	return &Leaf{Command: Command{Func: fn}}
}

// NewGroup returns a group with the given children
func NewGroup(children map[string]Node) *Group {
	if children == nil {
		children = make(map[string]Node)
	}
	return &Group{Children: children}
}

// Keys returns the child names in sorted order
func (g *Group) Keys() []string {
	if g == nil {
		return nil
	}
	keys := make([]string, 0, len(g.Children))
	for k := range g.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup follows path through nested groups
func (g *Group) Lookup(path ...string) Node {
	var cur Node = g
	for _, seg := range path {
		group, ok := cur.(*Group)
		if !ok || group == nil {
			return nil
		}
		cur, ok = group.Children[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// Walk visits every node depth first in sorted order
func (g *Group) Walk(fn func(path []string, n Node)) {
	g.walk(nil, fn)
}

func (g *Group) walk(prefix []string, fn func(path []string, n Node)) {
	for _, key := range g.Keys() {
		path := append(append([]string(nil), prefix...), key)
		child := g.Children[key]
		fn(path, child)
		if group, ok := child.(*Group); ok {
			group.walk(path, fn)
		}
	}
}

// Clone deep-copies the tree. Functions and validators are shared.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	out := *g
	out.Extensions = append([]string(nil), g.Extensions...)
	out.Children = make(map[string]Node, len(g.Children))
	for k, child := range g.Children {
		out.Children[k] = cloneNode(child)
	}
	return &out
}

func cloneNode(n Node) Node {
	switch v := n.(type) {
	case *Group:
		return v.Clone()
	case *Leaf:
		out := *v
		out.Extensions = append([]string(nil), v.Extensions...)
		out.Arguments = append([]Argument(nil), v.Arguments...)
		out.Options = append([]Option(nil), v.Options...)
		out.Settings = append([]string(nil), v.Settings...)
		return &out
	}
	return n
}
