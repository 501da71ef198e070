package settings

import "github.com/knadh/koanf/maps"

// RawKey is the reserved marker whose children are spliced into the parent
// level instead of being merged recursively. It is kept for content written
// against the marker based format; new code uses Set.
const RawKey = "__raw"

// Raw wraps values so that Merge places them over the parent level verbatim
func Raw(values Tree) Tree {
	return Tree{RawKey: values}
}

// Merge deep-merges patch over base and returns a new tree.
//
// Groups merge key by key; every other value, arrays included, is replaced.
// RawKey markers in either tree are resolved first; values under a marker in
// the patch replace the base values at that level without recursive merging.
func Merge(base, patch Tree) Tree {
	out := Resolve(base)
	if patch == nil {
		return out
	}
	mergeInto(out, maps.Copy(patch))
	return out
}

func mergeInto(dst, src Tree) {
	raw, _ := src[RawKey].(map[string]any)
	delete(src, RawKey)

	for key, value := range src {
		if group, ok := value.(map[string]any); ok {
			if existing, ok := dst[key].(map[string]any); ok {
				mergeInto(existing, group)
				continue
			}
			dst[key] = resolveInPlace(group)
			continue
		}
		dst[key] = value
	}

	for key, value := range raw {
		if group, ok := value.(map[string]any); ok {
			value = resolveInPlace(group)
		}
		dst[key] = value
	}
}

// Resolve returns a copy of the tree with every RawKey marker spliced into
// its parent. Nested markers resolve innermost first.
func Resolve(tree Tree) Tree {
	return resolveInPlace(Copy(tree))
}

func resolveInPlace(tree Tree) Tree {
	for key, value := range tree {
		if group, ok := value.(map[string]any); ok && key != RawKey {
			tree[key] = resolveInPlace(group)
		}
	}

	raw, ok := tree[RawKey].(map[string]any)
	if !ok {
		return tree
	}
	raw = resolveInPlace(raw)
	delete(tree, RawKey)
	for key, value := range raw {
		tree[key] = value
	}
	return tree
}

// Set returns a copy of the tree with value placed at path, replacing
// whatever was there. Missing intermediate groups are created.
func Set(tree Tree, path string, value any) Tree {
	out := Copy(tree)
	segments := SplitPath(path)
	if len(segments) == 0 {
		if group, ok := value.(map[string]any); ok {
			return Copy(group)
		}
		return out
	}

	cur := out
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = Tree{}
			cur[seg] = next
		}
		cur = next
	}
	if group, ok := value.(map[string]any); ok {
		value = Copy(group)
	}
	cur[segments[len(segments)-1]] = value
	return out
}

// MergeAt returns a copy of the tree with value deep-merged at path
func MergeAt(tree Tree, path string, value any) Tree {
	group, ok := value.(map[string]any)
	if !ok {
		return Set(tree, path, value)
	}
	patch := group
	if path != "" {
		patch = maps.Unflatten(Tree{path: group}, Delim)
	}
	return Merge(tree, patch)
}
