package testing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dab-demo/dab-demo/internal/paths"
)

// DefaultBar is the content of the shipped common_framework/config/bar.yml.
func DefaultBar() map[string]interface{} {
	return map[string]interface{}{
		"bar_test": map[string]interface{}{
			"foo_test": "zoo",
		},
	}
}

// DefaultData is the content of the shipped common_framework/config/data.json.
func DefaultData() []string {
	return []string{"Lorem", "Ipsum", "Dolor", "Sit", "Amet"}
}

// ProjectOptions controls what NewProject writes.
type ProjectOptions struct {
	// Bar is written to the shared bar.yml. Nil means DefaultBar.
	Bar map[string]interface{}
	// Data is written to the shared data.json. Nil means DefaultData.
	Data []string
	// SkipSharedConfig leaves the shared config directory empty.
	SkipSharedConfig bool
}

// NewProject lays out <dir>/dab_demo with resources, tests and config directories
// and <dir>/common_framework/config with bar.yml and data.json.
func NewProject(dir string, opts ProjectOptions) (paths.ProjectPaths, error) {
	p, err := paths.New(filepath.Join(dir, paths.ProjectDirName))
	if err != nil {
		return paths.ProjectPaths{}, err
	}

	for _, d := range []string{p.Resources(), p.Tests(), p.Config(), p.SharedConfig()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return paths.ProjectPaths{}, fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	if opts.SkipSharedConfig {
		return p, nil
	}

	bar := opts.Bar
	if bar == nil {
		bar = DefaultBar()
	}
	if err := WriteBar(p, bar); err != nil {
		return paths.ProjectPaths{}, err
	}

	data := opts.Data
	if data == nil {
		data = DefaultData()
	}
	if err := WriteData(p, data); err != nil {
		return paths.ProjectPaths{}, err
	}
	return p, nil
}

// WriteBar writes v as YAML to the shared bar.yml.
func WriteBar(p paths.ProjectPaths, v interface{}) error {
	text, err := convertToYAML(v)
	if err != nil {
		return err
	}
	return WriteSharedFile(p, "bar.yml", text)
}

// WriteData writes v as JSON to the shared data.json.
func WriteData(p paths.ProjectPaths, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	return WriteSharedFile(p, "data.json", string(data))
}

// WriteSharedFile writes raw content to a file in the shared config directory.
func WriteSharedFile(p paths.ProjectPaths, name, content string) error {
	path := filepath.Join(p.SharedConfig(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
