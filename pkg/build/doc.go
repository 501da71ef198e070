// Package build reduces an ordered list of extensions into one Context.
//
// A build runs in phases over a State:
//
//  1. load: resolve every package, then every plugin, then the project's own
//     extensions; nested packages and plugins load before the extension
//     declaring them
//  2. merge: check structure, merge settings and meta, normalize commands,
//     collect hooks, actions and dependencies, validate settings
//  3. dev exports: normal extensions borrow from their "-dev" counterpart
//  4. normal exports: "-dev" extensions borrow from their normal counterpart
//  5. post-init: run the stashed callbacks, last registered first
//
// A final step applies the project's settings and validates everything,
// missing required values included.
package build
