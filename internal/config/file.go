package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadFile reads a flat YAML mapping whose keys are flag names, e.g.
//
//	mode: serve
//	retry-delay: 250ms
//	include-uncaptured: false
//
// An empty path yields no values.
func loadFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for key, v := range raw {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("parse config %s: %q must be a scalar", path, key)
		case nil:
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = fmt.Sprint(v)
	}
	return values, nil
}
