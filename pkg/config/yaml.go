package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadYAML parses a YAML document whose top level maps section names to
// mappings of scalar options:
//
//	limit_xy_accel_jerk:
//	  x_accel_limit: 800
//	  gradient_change: true
//
// Section order follows the document.
func LoadYAML(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: invalid YAML: %w", err)
	}
	c := New()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return c, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config: YAML line %d: top level must be a mapping of sections", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]
		options := make(map[string]string)
		switch body.Kind {
		case yaml.MappingNode:
			for j := 0; j+1 < len(body.Content); j += 2 {
				key, val := body.Content[j], body.Content[j+1]
				if val.Kind != yaml.ScalarNode {
					return nil, NewConfigError(name, key.Value,
						fmt.Sprintf("YAML line %d: value must be a scalar", val.Line))
				}
				options[key.Value] = val.Value
			}
		case yaml.ScalarNode:
			if body.Tag != "!!null" {
				return nil, NewConfigError(name, "", fmt.Sprintf("YAML line %d: section must be a mapping", body.Line))
			}
		default:
			return nil, NewConfigError(name, "", fmt.Sprintf("YAML line %d: section must be a mapping", body.Line))
		}
		c.addSection(name, options)
	}
	return c, nil
}
