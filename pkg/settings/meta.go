package settings

import (
	"sort"

	"github.com/arthur-debert/roc/pkg/validators"
)

// Meta is a node of the meta tree. It describes the settings value found at
// the same path and records which extensions have touched it.
type Meta struct {
	Description string
	Validator   validators.Validator
	// Override is the annotation carried by a contribution. It is never kept
	// in the accumulated tree.
	Override Override
	// Extensions is the provenance list, in the order extensions touched the path
	Extensions []string
	Children   map[string]*Meta
}

// Field is the description of a single meta node used with Meta.Set
type Field struct {
	Description string
	Validator   validators.Validator
	Override    Override
}

// NewMeta returns an empty meta root
func NewMeta() *Meta {
	return &Meta{}
}

// Child returns the named child or nil
func (m *Meta) Child(key string) *Meta {
	if m == nil || m.Children == nil {
		return nil
	}
	return m.Children[key]
}

// Ensure returns the named child, creating it when missing
func (m *Meta) Ensure(key string) *Meta {
	if m.Children == nil {
		m.Children = make(map[string]*Meta)
	}
	child, ok := m.Children[key]
	if !ok {
		child = &Meta{}
		m.Children[key] = child
	}
	return child
}

// Lookup returns the node at a dotted path or nil
func (m *Meta) Lookup(path string) *Meta {
	cur := m
	for _, seg := range SplitPath(path) {
		cur = cur.Child(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Set describes the node at path, creating intermediate nodes. It returns
// the receiver so calls can be chained while building a descriptor.
func (m *Meta) Set(path string, field Field) *Meta {
	cur := m
	for _, seg := range SplitPath(path) {
		cur = cur.Ensure(seg)
	}
	cur.Description = field.Description
	cur.Validator = field.Validator
	cur.Override = field.Override
	return m
}

// Owners returns the provenance list of the node at path
func (m *Meta) Owners(path string) []string {
	node := m.Lookup(path)
	if node == nil {
		return nil
	}
	return node.Extensions
}

// Unmanaged reports whether the node's validator marks its object value opaque
func (m *Meta) Unmanaged() bool {
	return m != nil && m.Validator != nil && m.Validator.Describe().Unmanaged
}

// IsLeaf reports whether the node has no children
func (m *Meta) IsLeaf() bool {
	return m == nil || len(m.Children) == 0
}

// Clone deep-copies the node
func (m *Meta) Clone() *Meta {
	if m == nil {
		return nil
	}
	out := &Meta{
		Description: m.Description,
		Validator:   m.Validator,
		Override:    m.Override,
	}
	if m.Extensions != nil {
		out.Extensions = append([]string(nil), m.Extensions...)
	}
	if m.Children != nil {
		out.Children = make(map[string]*Meta, len(m.Children))
		for k, child := range m.Children {
			out.Children[k] = child.Clone()
		}
	}
	return out
}

// SortedChildren returns the child keys in sorted order
func (m *Meta) SortedChildren() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.Children))
	for k := range m.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Walk visits every node below the receiver depth first in sorted key order
func (m *Meta) Walk(fn func(path string, node *Meta)) {
	m.walk("", fn)
}

func (m *Meta) walk(prefix string, fn func(path string, node *Meta)) {
	for _, key := range m.SortedChildren() {
		path := key
		if prefix != "" {
			path = JoinPath(prefix, key)
		}
		child := m.Children[key]
		fn(path, child)
		child.walk(path, fn)
	}
}

// MergeMeta merges patch over base and returns a new tree. Descriptions and
// validators from the patch replace the base ones when set, provenance lists
// are unioned in order and override annotations are dropped.
func MergeMeta(base, patch *Meta) *Meta {
	out := base.Clone()
	if out == nil {
		out = NewMeta()
	}
	mergeMetaInto(out, patch)
	clearOverrides(out)
	return out
}

func mergeMetaInto(dst, src *Meta) {
	if src == nil {
		return
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.Validator != nil {
		dst.Validator = src.Validator
	}
	for _, ext := range src.Extensions {
		dst.Extensions = AppendOwner(dst.Extensions, ext)
	}
	for key, child := range src.Children {
		mergeMetaInto(dst.Ensure(key), child)
	}
}

func clearOverrides(m *Meta) {
	m.Override = Override{}
	for _, child := range m.Children {
		clearOverrides(child)
	}
}
