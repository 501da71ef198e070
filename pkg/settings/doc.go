// Package settings holds the settings tree contributed by extensions, the
// parallel meta tree describing it, and the merge engine that combines them.
//
// A settings tree is a plain nested map. Deep merging is the default; an
// extension that needs to replace a nested value instead of merging into it
// uses Set, or for content written against the older format, the RawKey
// marker whose children are spliced over the parent level.
//
// The meta tree mirrors the settings tree. Each node carries a description,
// a validator, the override annotation of the contribution it came from and
// the ordered list of extensions that have touched the path.
package settings
