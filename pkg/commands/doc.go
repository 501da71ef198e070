// Package commands models the command tree extensions contribute.
//
// A node is either a *Leaf, something that can be executed, or a *Group of
// further nodes. Normalize merges one extension's tree into the accumulated
// tree, stamping provenance on every node and refusing to let an extension
// replace another extension's command unless it declares an override.
package commands
