package build

import (
	"strings"

	"github.com/arthur-debert/roc/pkg/errors"
)

// ParseAssignment splits "path=value"
func ParseAssignment(s string) (string, string, error) {
	path, value, ok := strings.Cut(s, "=")
	path = strings.TrimSpace(path)
	if !ok || path == "" {
		return "", "", errors.Newf(errors.ErrInvalidInput, "expected path=value, got %q", s).
			WithDetail("assignment", s)
	}
	return path, value, nil
}
