// Package foo reads the shared bar configuration.
package foo

import (
	"fmt"
	"path/filepath"

	"github.com/dab-demo/dab-demo/internal/paths"
	"github.com/dab-demo/dab-demo/internal/values"
)

// BarFile is the location of bar.yml relative to the shared framework directory.
const BarFile = "config/bar.yml"

// BarPath returns the path of bar.yml for p.
func BarPath(p paths.ProjectPaths) string {
	return filepath.Join(p.CommonFramework(), filepath.FromSlash(BarFile))
}

// ParseBar loads the shared bar.yml.
func ParseBar(p paths.ProjectPaths) (map[string]interface{}, error) {
	return values.LoadYAML(BarPath(p))
}

// FooTest returns bar_test.foo_test from the shared bar.yml.
func FooTest(p paths.ProjectPaths) (string, error) {
	bar, err := ParseBar(p)
	if err != nil {
		return "", err
	}

	section, ok := bar["bar_test"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("%s: bar_test is missing or not a mapping", BarPath(p))
	}
	value, ok := section["foo_test"].(string)
	if !ok {
		return "", fmt.Errorf("%s: bar_test.foo_test is missing or not a string", BarPath(p))
	}
	return value, nil
}
