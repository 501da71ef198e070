package settings

import (
	"sort"
	"strings"

	"github.com/knadh/koanf/maps"
)

// Delim separates path segments
const Delim = "."

// Tree is a nested settings mapping. Nested groups are map[string]any.
type Tree = map[string]any

// SplitPath turns a dotted path into segments
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Delim)
}

// JoinPath joins segments into a dotted path
func JoinPath(segments ...string) string {
	return strings.Join(segments, Delim)
}

// Copy returns a deep copy of the tree
func Copy(tree Tree) Tree {
	if tree == nil {
		return Tree{}
	}
	return maps.Copy(tree)
}

// Get returns the value at a dotted path, nil when absent
func Get(tree Tree, path string) any {
	if tree == nil {
		return nil
	}
	return maps.Search(tree, SplitPath(path))
}

// Has reports whether a value exists at the path
func Has(tree Tree, path string) bool {
	segments := SplitPath(path)
	cur := tree
	for i, seg := range segments {
		v, ok := cur[seg]
		if !ok {
			return false
		}
		if i == len(segments)-1 {
			return true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// Paths returns the sorted dotted paths of every leaf. Empty groups count as leaves.
func Paths(tree Tree) []string {
	flat, _ := maps.Flatten(tree, nil, Delim)
	out := make([]string, 0, len(flat))
	for k := range flat {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsGroup reports whether a value is a nested group
func IsGroup(value any) bool {
	_, ok := value.(map[string]any)
	return ok
}

// SortedKeys returns the keys of a tree in sorted order
func SortedKeys(tree Tree) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
