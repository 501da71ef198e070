package dependencies

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
	"github.com/arthur-debert/roc/pkg/packagejson"
)

// Reason explains why a requirement is not met
type Reason string

const (
	// ReasonMissing means the project does not declare the module
	ReasonMissing Reason = "missing"
	// ReasonUnsatisfied means the installed version is outside the range
	ReasonUnsatisfied Reason = "unsatisfied"
	// ReasonInvalidRange means the requested range cannot be parsed
	ReasonInvalidRange Reason = "invalid-range"
)

// Mismatch is a requirement the project does not meet
type Mismatch struct {
	Name      string
	Range     string
	Installed string
	Extension string
	Context   string
	Reason    Reason
}

func (m Mismatch) String() string {
	switch m.Reason {
	case ReasonMissing:
		return fmt.Sprintf("%s@%s required by %s is not a dependency of the project", m.Name, m.Range, m.Extension)
	case ReasonUnsatisfied:
		return fmt.Sprintf("%s@%s required by %s but %s is installed", m.Name, m.Range, m.Extension, m.Installed)
	}
	return fmt.Sprintf("%s required by %s has an invalid range %q", m.Name, m.Extension, m.Range)
}

// Verify checks every requirement against the project in projectDir. A
// module must be listed in the project's dependencies or devDependencies
// and, when it is installed, its version must satisfy the requested range.
// Each requirement is checked on its own, so two extensions asking for
// conflicting ranges of one module are both reported. Verify only reports:
// it never installs anything.
func Verify(projectDir string, requires []Requirement) ([]Mismatch, error) {
	logger := logging.GetLogger("dependencies.verify")

	project, err := packagejson.ReadDir(projectDir)
	if err != nil {
		return nil, err
	}

	installed := make(map[string]*packagejson.Package)
	var mismatches []Mismatch
	for _, req := range requires {
		m := Mismatch{Name: req.Name, Range: req.Version, Extension: req.Extension, Context: req.Context}

		if !project.Declares(req.Name) {
			m.Reason = ReasonMissing
			mismatches = append(mismatches, m)
			continue
		}

		constraint, err := parseRange(req.Version)
		if err != nil {
			logger.Debug().Err(err).Str("module", req.Name).Msg("Unparseable version range")
			m.Reason = ReasonInvalidRange
			mismatches = append(mismatches, m)
			continue
		}

		pkg, seen := installed[req.Name]
		if !seen {
			if pkg, err = packagejson.Installed(projectDir, req.Name); err != nil {
				return nil, err
			}
			installed[req.Name] = pkg
		}
		if pkg == nil || constraint == nil {
			continue
		}

		m.Installed = pkg.Version
		version, err := semver.NewVersion(pkg.Version)
		if err != nil || !constraint.Check(version) {
			m.Reason = ReasonUnsatisfied
			mismatches = append(mismatches, m)
		}
	}

	logger.Debug().Int("requires", len(requires)).Int("mismatches", len(mismatches)).Msg("Verified dependencies")
	return mismatches, nil
}

// parseRange returns nil for ranges that accept any version
func parseRange(r string) (*semver.Constraints, error) {
	r = strings.TrimSpace(r)
	if r == "" || r == "*" || r == "latest" {
		return nil, nil
	}
	return semver.NewConstraint(r)
}

// MismatchError folds mismatches into a single error, nil when there are none
func MismatchError(mismatches []Mismatch) error {
	if len(mismatches) == 0 {
		return nil
	}
	lines := make([]string, 0, len(mismatches))
	for _, m := range mismatches {
		lines = append(lines, m.String())
	}
	return errors.Newf(errors.ErrDependencyMismatch, "%d dependency requirement(s) not met:\n  %s",
		len(mismatches), strings.Join(lines, "\n  ")).
		WithDetail("count", len(mismatches))
}
