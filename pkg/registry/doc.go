// Package registry provides a generic, type-safe registry used for
// compiled-in extensions and named settings validators. Items are
// registered by name, usually from init() functions, and can be listed
// either sorted or in registration order.
package registry
