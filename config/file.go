package config

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/evergreen-ci/kvconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAMLFileSource is a source of settings from a YAML file. Nested keys are
// flattened with the KeyDelimiter and sequence items are keyed by their index,
// so
//
//	db:
//	  hosts: [a, b]
//
// produces the keys db:hosts:0 and db:hosts:1.
type YAMLFileSource struct {
	Path string
	// Optional makes a missing file load as empty settings instead of
	// failing.
	Optional bool
}

// NewYAMLFileSource returns a source for the YAML file at the path.
func NewYAMLFileSource(path string, optional bool) *YAMLFileSource {
	return &YAMLFileSource{Path: path, Optional: optional}
}

// Load reads and flattens the file.
func (s *YAMLFileSource) Load(context.Context) (*kvconfig.Settings, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if s.Optional && os.IsNotExist(err) {
			return kvconfig.NewSettings(), nil
		}
		return nil, errors.Wrapf(err, "reading file '%s'", s.Path)
	}

	settings, err := ParseYAML(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing file '%s'", s.Path)
	}

	return settings, nil
}

// String returns the name of the source.
func (s *YAMLFileSource) String() string {
	return fmt.Sprintf("yaml(%s)", s.Path)
}

// ParseYAML flattens a YAML document into settings in document order.
func ParseYAML(b []byte) (*kvconfig.Settings, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshalling YAML")
	}

	settings := kvconfig.NewSettings()
	if len(doc.Content) == 0 {
		return settings, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top-level YAML value must be a mapping")
	}
	if err := flattenYAML(settings, "", root); err != nil {
		return nil, err
	}

	return settings, nil
}

func flattenYAML(settings *kvconfig.Settings, prefix string, n *yaml.Node) error {
	switch n.Kind {
	case yaml.AliasNode:
		return flattenYAML(settings, prefix, n.Alias)
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return errors.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if err := flattenYAML(settings, joinKey(prefix, k.Value), v); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			if err := flattenYAML(settings, joinKey(prefix, strconv.Itoa(i)), item); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			settings.Set(prefix, "")
			return nil
		}
		settings.Set(prefix, n.Value)
	default:
		return errors.Errorf("line %d: unsupported YAML node", n.Line)
	}

	return nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + KeyDelimiter + key
}
