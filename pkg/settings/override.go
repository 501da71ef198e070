package settings

import (
	"fmt"
	"slices"
)

// Override is the annotation an extension places on a node it wants to
// redefine after another extension already defined it.
type Override struct {
	// All grants permission to replace any previous owner
	All bool
	// Extension names the previous owner being replaced
	Extension string
}

// OverrideAll returns the blanket override annotation
func OverrideAll() Override { return Override{All: true} }

// OverrideOf returns an override naming the extension being replaced
func OverrideOf(extension string) Override { return Override{Extension: extension} }

// ParseOverride decodes the manifest form: true, false or an extension name
func ParseOverride(value any) (Override, error) {
	switch v := value.(type) {
	case nil:
		return Override{}, nil
	case bool:
		return Override{All: v}, nil
	case string:
		return Override{Extension: v}, nil
	}
	return Override{}, fmt.Errorf("override must be true or an extension name, got %T", value)
}

// IsZero reports whether no override was declared
func (o Override) IsZero() bool {
	return !o.All && o.Extension == ""
}

// Permits decides whether extension may redefine a node currently owned by
// owners. The owning extension may always change its own definition.
func (o Override) Permits(extension string, owners []string) bool {
	if slices.Contains(owners, extension) {
		return true
	}
	if o.All {
		return true
	}
	return o.Extension != "" && slices.Contains(owners, o.Extension)
}

func (o Override) String() string {
	switch {
	case o.All:
		return "true"
	case o.Extension != "":
		return o.Extension
	}
	return ""
}

// AppendOwner appends an extension to a provenance list unless already present
func AppendOwner(owners []string, extension string) []string {
	if slices.Contains(owners, extension) {
		return owners
	}
	out := make([]string, 0, len(owners)+1)
	out = append(out, owners...)
	return append(out, extension)
}
