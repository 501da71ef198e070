// Package structure guards the shape of the accumulated settings while
// extensions are merged.
//
// Every path an extension contributes that already exists in the accumulated
// state must either belong to that extension already or carry an override
// annotation naming (or blanket covering) a previous owner. Changing a leaf
// into a group or the reverse is held to the same rule. Successful checks
// append the extension to the provenance list of every touched path.
package structure
