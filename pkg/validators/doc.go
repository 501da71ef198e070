// Package validators provides the settings validators used by extension
// meta trees.
//
// Every validator is also a self-describing probe: Validate checks a value
// while Describe reports the type, whether the value is required, whether an
// object value is unmanaged (treated as a leaf by structure checks) and how a
// string from the command line converts into a value of that type.
//
// Validators can be referenced by name from extension manifests:
//
//	validator = "isInteger"
//	validator = "required:isString"
//	validator = "/^v[0-9]+$/"
package validators
