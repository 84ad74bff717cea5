package values

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

var (
	// ErrEmptyFile is returned when a config file exists but has no content.
	ErrEmptyFile = errors.New("file is empty")
	// ErrNotMapping is returned when a YAML document's root is not a mapping.
	ErrNotMapping = errors.New("root is not a mapping")
	// ErrNotStringList is returned when a JSON document is not an array of strings.
	ErrNotStringList = errors.New("root is not a list of strings")
)

// ReadFile reads a config file, rejecting empty files before any parsing happens.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// LoadYAML reads a YAML file whose root is a mapping.
// Malformed input never yields a partially parsed map.
func LoadYAML(path string) (map[string]interface{}, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %q: %w", path, err)
	}
	m, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotMapping)
	}
	return m, nil
}

// LoadJSON reads a JSON file of any shape.
func LoadJSON(path string) (interface{}, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON %q: %w", path, err)
	}
	return doc, nil
}

// LoadStringList reads a JSON file holding an array of strings.
func LoadStringList(path string) ([]string, error) {
	doc, err := LoadJSON(path)
	if err != nil {
		return nil, err
	}
	items, ok := doc.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotStringList)
	}

	result := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s: element %d is %T: %w", path, i, item, ErrNotStringList)
		}
		result = append(result, s)
	}
	return result, nil
}

// MarshalYAML serializes v as YAML.
func MarshalYAML(v interface{}) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}
