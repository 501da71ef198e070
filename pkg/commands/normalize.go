package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/settings"
)

// Normalize merges the raw command tree of one extension into existing and
// returns the result. existing is not modified.
//
// Leaves get the extension path as Context and the extension appended to
// their provenance. Groups merge child by child. Replacing a leaf, or turning
// a leaf into a group or the reverse, requires the extension to already own
// the node or to declare an override naming one of its owners.
func Normalize(extension, path string, raw *Group, existing *Group) (*Group, error) {
	out := existing.Clone()
	if out == nil {
		out = NewGroup(nil)
	}
	if raw == nil {
		return out, nil
	}

	n := &normalizer{extension: extension, path: path}
	if err := n.mergeGroup(nil, out, raw); err != nil {
		return nil, err
	}
	return out, nil
}

type normalizer struct {
	extension string
	path      string
}

func (n *normalizer) mergeGroup(prefix []string, dst, src *Group) error {
	dst.Extensions = settings.AppendOwner(dst.Extensions, n.extension)
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if dst.Children == nil {
		dst.Children = make(map[string]Node)
	}

	for _, key := range src.Keys() {
		cmdPath := append(append([]string(nil), prefix...), key)
		incoming := src.Children[key]
		if isNil(incoming) {
			return n.invalid(cmdPath)
		}
		current, exists := dst.Children[key]

		if !exists {
			normalized, err := n.fresh(cmdPath, incoming)
			if err != nil {
				return err
			}
			dst.Children[key] = normalized
			continue
		}

		switch in := incoming.(type) {
		case *Group:
			if cur, ok := current.(*Group); ok {
				if err := n.mergeGroup(cmdPath, cur, in); err != nil {
					return err
				}
				continue
			}
			if !in.Override.Permits(n.extension, current.Owners()) {
				return n.collision(cmdPath, current, "replaces command")
			}
			n.accepted(cmdPath, current)
			normalized, err := n.fresh(cmdPath, in)
			if err != nil {
				return err
			}
			dst.Children[key] = normalized

		case *Leaf:
			if !in.Override.Permits(n.extension, current.Owners()) {
				verb := "redefines command"
				if _, ok := current.(*Group); ok {
					verb = "replaces command group"
				}
				return n.collision(cmdPath, current, verb)
			}
			leaf := n.leaf(in)
			if _, ok := current.(*Leaf); ok {
				if !slices.Contains(current.Owners(), n.extension) {
					n.accepted(cmdPath, current)
				}
				leaf.Extensions = settings.AppendOwner(current.Owners(), n.extension)
			} else {
				n.accepted(cmdPath, current)
			}
			dst.Children[key] = leaf

		default:
			return errors.Newf(errors.ErrExtensionInvalid, "command %q has an unsupported node type %T",
				strings.Join(cmdPath, " "), incoming).WithExtension(n.extension)
		}
	}
	return nil
}

// fresh normalizes a node that has no counterpart in the existing tree
func (n *normalizer) fresh(cmdPath []string, node Node) (Node, error) {
	if isNil(node) {
		return nil, n.invalid(cmdPath)
	}
	switch v := node.(type) {
	case *Leaf:
		return n.leaf(v), nil
	case *Group:
		group := &Group{Children: make(map[string]Node)}
		if err := n.mergeGroup(cmdPath, group, v); err != nil {
			return nil, err
		}
		return group, nil
	}
	return nil, errors.Newf(errors.ErrExtensionInvalid, "command %q has an unsupported node type %T",
		strings.Join(cmdPath, " "), node).WithExtension(n.extension)
}

// isNil catches nil interfaces and typed nil pointers
func isNil(node Node) bool {
	switch v := node.(type) {
	case nil:
		return true
	case *Leaf:
		return v == nil
	case *Group:
		return v == nil
	}
	return false
}

func (n *normalizer) invalid(cmdPath []string) error {
	name := strings.Join(cmdPath, " ")
	return errors.Newf(errors.ErrExtensionInvalid, "command %q is empty", name).
		WithDetail("command", name).
		WithExtension(n.extension)
}

func (n *normalizer) leaf(in *Leaf) *Leaf {
	out := cloneNode(in).(*Leaf)
	out.Context = n.path
	out.Extensions = settings.AppendOwner(nil, n.extension)
	out.Override = settings.Override{}
	return out
}

func (n *normalizer) collision(cmdPath []string, current Node, verb string) error {
	owners := current.Owners()
	name := strings.Join(cmdPath, " ")
	hint := ""
	if len(owners) > 0 {
		hint = fmt.Sprintf("; add override = %q (or true) to the command in %q to replace it",
			owners[len(owners)-1], n.extension)
	}
	return errors.Newf(errors.ErrCommandCollision, "extension %q %s %q previously defined by [%s]%s",
		n.extension, verb, name, strings.Join(owners, ", "), hint).
		WithDetail("command", name).
		WithDetail("owners", owners).
		WithExtension(n.extension)
}

func (n *normalizer) accepted(cmdPath []string, current Node) {
	logger := logging.ForExtension("commands", n.extension)
	logger.Debug().
		Str("command", strings.Join(cmdPath, " ")).
		Strs("owners", current.Owners()).
		Msg("Command override accepted")
}
