package commands

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/settings"
	"github.com/arthur-debert/roc/pkg/validators"
)

// MetaKey holds the name and description of a group in manifest form
const MetaKey = "__meta"

type rawParam struct {
	Name        string `mapstructure:"name"`
	Alias       string `mapstructure:"alias"`
	Description string `mapstructure:"description"`
	Validator   string `mapstructure:"validator"`
	Default     any    `mapstructure:"default"`
}

type rawLeaf struct {
	Command     string     `mapstructure:"command"`
	Description string     `mapstructure:"description"`
	Help        string     `mapstructure:"help"`
	Arguments   []rawParam `mapstructure:"arguments"`
	Options     []rawParam `mapstructure:"options"`
	Settings    any        `mapstructure:"settings"`
	Override    any        `mapstructure:"override"`
}

type rawMeta struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Override    any    `mapstructure:"override"`
}

// FromMap decodes the manifest form of a command tree.
//
// A string is a shell command, a table with a "command" key is a leaf and
// any other table is a group. A group may carry a "__meta" table with its
// name, description and override.
func FromMap(raw map[string]any) (*Group, error) {
	return decodeGroup(nil, raw)
}

func decodeGroup(path []string, raw map[string]any) (*Group, error) {
	group := NewGroup(nil)
	for key, value := range raw {
		if key == MetaKey {
			var meta rawMeta
			if err := mapstructure.Decode(value, &meta); err != nil {
				return nil, decodeError(path, err)
			}
			override, err := settings.ParseOverride(meta.Override)
			if err != nil {
				return nil, decodeError(path, err)
			}
			group.Name = meta.Name
			group.Description = meta.Description
			group.Override = override
			continue
		}

		childPath := append(append([]string(nil), path...), key)
		node, err := decodeNode(childPath, value)
		if err != nil {
			return nil, err
		}
		group.Children[key] = node
	}
	return group, nil
}

func decodeNode(path []string, value any) (Node, error) {
	switch v := value.(type) {
	case string:
		return Shell(v), nil
	case map[string]any:
		if _, ok := v["command"]; ok {
			return decodeLeaf(path, v)
		}
		return decodeGroup(path, v)
	}
	return nil, decodeError(path, fmt.Errorf("expected a string or a table, got %T", value))
}

func decodeLeaf(path []string, raw map[string]any) (*Leaf, error) {
	var rl rawLeaf
	if err := mapstructure.Decode(raw, &rl); err != nil {
		return nil, decodeError(path, err)
	}
	override, err := settings.ParseOverride(rl.Override)
	if err != nil {
		return nil, decodeError(path, err)
	}

	leaf := Shell(rl.Command)
	leaf.Description = rl.Description
	leaf.Help = rl.Help
	leaf.Override = override

	switch s := rl.Settings.(type) {
	case nil:
	case bool:
		if s {
			leaf.Settings = []string{"*"}
		}
	case string:
		leaf.Settings = []string{s}
	case []any:
		for _, item := range s {
			leaf.Settings = append(leaf.Settings, fmt.Sprint(item))
		}
	default:
		return nil, decodeError(path, fmt.Errorf("settings must be true or a list of groups, got %T", rl.Settings))
	}

	for _, p := range rl.Arguments {
		v, err := parseValidator(p.Validator)
		if err != nil {
			return nil, decodeError(path, err)
		}
		leaf.Arguments = append(leaf.Arguments, Argument{
			Name: p.Name, Description: p.Description, Validator: v, Default: p.Default,
		})
	}
	for _, p := range rl.Options {
		v, err := parseValidator(p.Validator)
		if err != nil {
			return nil, decodeError(path, err)
		}
		leaf.Options = append(leaf.Options, Option{
			Name: p.Name, Alias: p.Alias, Description: p.Description, Validator: v, Default: p.Default,
		})
	}
	return leaf, nil
}

func parseValidator(ref string) (validators.Validator, error) {
	if ref == "" {
		return nil, nil
	}
	return validators.Parse(ref)
}

func decodeError(path []string, err error) error {
	return errors.Wrapf(err, errors.ErrExtensionInvalid, "invalid command definition at %v", path).
		WithDetail("command", path)
}
