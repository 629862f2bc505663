package config

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML parameter file. Nested mappings are flattened into
// dotted keys, so
//
//	truth:
//	  dt.ns: 100000000
//
// and "truth.dt.ns: 100000000" describe the same parameter.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Annotatef(err, "loading %s", path)
	}
	return cfg, nil
}

// LoadFiles loads and merges several parameter files in order.
func LoadFiles(paths ...string) (*Configuration, error) {
	cfgs := make([]*Configuration, 0, len(paths))
	for _, p := range paths {
		c, err := Load(p)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, c)
	}
	return Merge(cfgs...), nil
}

func Parse(data []byte) (*Configuration, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Trace(err)
	}
	flat := make(map[string]any)
	if err := flatten("", doc, flat); err != nil {
		return nil, err
	}
	return New(flat)
}

func flatten(prefix string, in map[string]any, out map[string]any) error {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			if err := flatten(key, nested, out); err != nil {
				return err
			}
			continue
		}
		if _, dup := out[key]; dup {
			return &Error{Key: key, Reason: "defined more than once"}
		}
		out[key] = v
	}
	return nil
}

// Marshal renders c as a flat YAML mapping with sorted keys.
func Marshal(c *Configuration) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range c.Keys() {
		v, _ := c.Value(k)
		var val yaml.Node
		if err := val.Encode(v); err != nil {
			return nil, errors.Annotatef(err, "encoding %q", k)
		}
		if _, ok := v.([]float64); ok {
			val.Style = yaml.FlowStyle
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&val,
		)
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return out, nil
}

func Save(path string, c *Configuration) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ParseValue interprets a command line "key=value" right-hand side using
// YAML scalar rules, so "3" is an integer, "3.0" a real and "[1, 2, 3]" a
// vector.
func ParseValue(s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, errors.Trace(err)
	}
	if v == nil {
		return nil, errors.NotValidf("empty value %q", s)
	}
	return v, nil
}
