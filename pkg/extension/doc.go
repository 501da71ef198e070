// Package extension defines what an extension contributes and how it is
// found.
//
// An extension is a package or a plugin. Its Descriptor carries settings
// defaults with their meta, commands, hooks, actions, dependency declarations
// and an optional post-init callback. Loaders turn a Ref into an Extension:
// StaticLoader serves extensions compiled into the binary, ManifestLoader
// reads package.json and roc.toml from disk and ChainLoader combines them.
package extension
