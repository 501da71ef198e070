package extension

import (
	"regexp"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/packagejson"
)

// Patterns select packages and plugins among a project's dependencies
type Patterns struct {
	Packages string
	Plugins  string
}

// DefaultPatterns matches the conventional extension module names
var DefaultPatterns = Patterns{
	Packages: `^roc-package-`,
	Plugins:  `^roc-plugin-`,
}

// Selection lists explicitly chosen extensions
type Selection struct {
	Packages []string
	Plugins  []string
}

// Discover returns the packages then the plugins of a project. Explicit
// lists are used as given. Otherwise every dependency and devDependency of
// pkg matching the pattern is picked, in alphabetical order.
func Discover(pkg *packagejson.Package, patterns Patterns, explicit Selection) ([]Ref, error) {
	baseDir := ""
	if pkg != nil {
		baseDir = pkg.Dir
	}

	packages, err := pick(pkg, patterns.Packages, explicit.Packages, TypePackage, baseDir)
	if err != nil {
		return nil, err
	}
	plugins, err := pick(pkg, patterns.Plugins, explicit.Plugins, TypePlugin, baseDir)
	if err != nil {
		return nil, err
	}
	return append(packages, plugins...), nil
}

func pick(pkg *packagejson.Package, pattern string, explicit []string, typ Type, baseDir string) ([]Ref, error) {
	if len(explicit) > 0 {
		return ParseRefs(explicit, typ, baseDir), nil
	}
	if pattern == "" {
		return nil, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "invalid %s pattern %q", typ, pattern)
	}

	var refs []Ref
	for _, name := range pkg.DependencyNames() {
		if re.MatchString(name) {
			refs = append(refs, Ref{Name: name, Type: typ})
		}
	}
	return refs, nil
}
