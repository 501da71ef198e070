package structure

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/settings"
)

// Kind tells a leaf value from a group of further settings
type Kind int

const (
	// Absent means nothing is defined at the path
	Absent Kind = iota
	// Leaf is a scalar, array or unmanaged object
	Leaf
	// Group is a nested mapping the structure check descends into
	Group
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "value"
	case Group:
		return "group"
	}
	return "nothing"
}

// Collision describes a path whose redefinition was refused
type Collision struct {
	Path      string
	Extension string
	Owners    []string
	Before    Kind
	After     Kind
}

// ShapeChanged reports whether the refused change altered the kind of the path
func (c Collision) ShapeChanged() bool {
	return c.Before != c.After
}

// Error builds the STRUCTURE_COLLISION error reported to the user
func (c Collision) Error() *errors.RocError {
	var msg string
	if c.ShapeChanged() {
		msg = fmt.Sprintf("%q from extension %q changes a %s previously defined by [%s] into a %s",
			c.Path, c.Extension, c.Before, strings.Join(c.Owners, ", "), c.After)
	} else {
		msg = fmt.Sprintf("%q from extension %q redefines a value previously defined by [%s]",
			c.Path, c.Extension, strings.Join(c.Owners, ", "))
	}
	msg += fmt.Sprintf("; add override = %q (or true) to the meta of %q in %q to replace it",
		c.Owners[len(c.Owners)-1], c.Path, c.Extension)

	return errors.New(errors.ErrStructureCollision, msg).
		WithDetail("path", c.Path).
		WithDetail("owners", c.Owners).
		WithExtension(c.Extension)
}

type checker struct {
	extension string
	log       func(path string, owners []string)
}

// Check validates the contribution of one extension against the accumulated
// state and returns the accumulated meta with updated provenance. Neither
// input tree is modified. The returned meta does not yet include the
// descriptions and validators of newMeta; callers merge those afterwards.
func Check(extension string, newConfig settings.Tree, newMeta *settings.Meta,
	accConfig settings.Tree, accMeta *settings.Meta) (*settings.Meta, error) {
	logger := logging.ForExtension("structure", extension)

	out := accMeta.Clone()
	if out == nil {
		out = settings.NewMeta()
	}

	c := &checker{
		extension: extension,
		log: func(path string, owners []string) {
			logger.Debug().Str("path", path).Strs("owners", owners).Msg("Override accepted")
		},
	}
	if err := c.walk("", newConfig, newMeta, accConfig, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *checker) walk(prefix string, newTree settings.Tree, newMeta *settings.Meta,
	accTree settings.Tree, accMeta *settings.Meta) error {
	for _, key := range contributedKeys(newTree, newMeta) {
		path := key
		if prefix != "" {
			path = settings.JoinPath(prefix, key)
		}

		newValue, inConfig := newTree[key]
		oldValue, existed := accTree[key]
		nm := newMeta.Child(key)
		am := accMeta.Ensure(key)

		if !inConfig {
			if err := c.metaOnly(path, nm, oldValue, existed, am); err != nil {
				return err
			}
			continue
		}

		before := kindOf(oldValue, existed, am)
		after := kindOf(newValue, true, effectiveMeta(nm, am))

		switch {
		case before == Absent:
			claim(am, newValue, nm, c.extension)
			continue

		case before != after:
			if !permitted(c.extension, nm, am) {
				return Collision{Path: path, Extension: c.extension, Owners: am.Extensions,
					Before: before, After: after}.Error()
			}
			c.log(path, am.Extensions)
			// The previous occupants described something else.
			am.Extensions = nil
			am.Children = nil
			am.Validator = nil
			am.Description = ""
			claim(am, newValue, nm, c.extension)
			continue

		case after == Group:
			am.Extensions = settings.AppendOwner(am.Extensions, c.extension)
			oldGroup, _ := oldValue.(map[string]any)
			newGroup, _ := newValue.(map[string]any)
			if err := c.walk(path, newGroup, nm, oldGroup, am); err != nil {
				return err
			}

		default:
			if !permitted(c.extension, nm, am) {
				return Collision{Path: path, Extension: c.extension, Owners: am.Extensions,
					Before: before, After: after}.Error()
			}
			if len(am.Extensions) > 0 && !slices.Contains(am.Extensions, c.extension) {
				c.log(path, am.Extensions)
			}
			am.Extensions = settings.AppendOwner(am.Extensions, c.extension)
		}
	}
	return nil
}

// metaOnly handles meta contributed for a path the extension sets no value
// for. Describing a group is additive like adding keys to it; a validator on
// a group or any meta on a value needs the override rule.
func (c *checker) metaOnly(path string, nm *settings.Meta, oldValue any, existed bool, am *settings.Meta) error {
	if nm == nil {
		return nil
	}

	if describesGroup(nm, oldValue, existed, am) {
		if nm.Validator != nil {
			if !permitted(c.extension, nm, am) {
				return Collision{Path: path, Extension: c.extension, Owners: am.Extensions,
					Before: Group, After: Group}.Error()
			}
			if len(am.Extensions) > 0 && !slices.Contains(am.Extensions, c.extension) {
				c.log(path, am.Extensions)
			}
		}
		if nm.Description != "" || nm.Validator != nil {
			am.Extensions = settings.AppendOwner(am.Extensions, c.extension)
		}
		oldGroup, _ := oldValue.(map[string]any)
		return c.walk(path, nil, nm, oldGroup, am)
	}

	if nm.Description == "" && nm.Validator == nil {
		return nil
	}
	if !permitted(c.extension, nm, am) {
		kind := kindOf(oldValue, existed, am)
		return Collision{Path: path, Extension: c.extension, Owners: am.Extensions,
			Before: kind, After: kind}.Error()
	}
	am.Extensions = settings.AppendOwner(am.Extensions, c.extension)
	return nil
}

// describesGroup reports whether meta-only nm applies to a group: an existing
// managed mapping, or a path with no value whose meta has children
func describesGroup(nm *settings.Meta, oldValue any, existed bool, am *settings.Meta) bool {
	if effectiveMeta(nm, am).Unmanaged() {
		return false
	}
	if existed {
		return settings.IsGroup(oldValue)
	}
	return !nm.IsLeaf()
}

// claim records the extension on a newly defined path and everything below it
func claim(am *settings.Meta, value any, nm *settings.Meta, extension string) {
	am.Extensions = settings.AppendOwner(am.Extensions, extension)
	group, ok := value.(map[string]any)
	if !ok || effectiveMeta(nm, am).Unmanaged() {
		return
	}
	for key, child := range group {
		claim(am.Ensure(key), child, nm.Child(key), extension)
	}
}

func kindOf(value any, exists bool, meta *settings.Meta) Kind {
	if !exists {
		return Absent
	}
	if settings.IsGroup(value) && !meta.Unmanaged() {
		return Group
	}
	return Leaf
}

// effectiveMeta prefers the contribution's validator when it declares one
func effectiveMeta(nm, am *settings.Meta) *settings.Meta {
	if nm != nil && nm.Validator != nil {
		return nm
	}
	return am
}

// permitted applies the override rule; paths nobody owns yet are always free
func permitted(extension string, nm, am *settings.Meta) bool {
	if len(am.Extensions) == 0 {
		return true
	}
	var o settings.Override
	if nm != nil {
		o = nm.Override
	}
	return o.Permits(extension, am.Extensions)
}

func contributedKeys(tree settings.Tree, meta *settings.Meta) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, k := range settings.SortedKeys(tree) {
		seen[k] = true
		keys = append(keys, k)
	}
	for _, k := range meta.SortedChildren() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}
