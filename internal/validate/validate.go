// Package validate checks the shared config files of the bundle project against
// their expected shape and content.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/dab-demo/dab-demo/internal/paths"
)

// Check names reported in Error.Check.
const (
	CheckExists      = "exists"
	CheckNotEmpty    = "not-empty"
	CheckValidYAML   = "valid-yaml"
	CheckValidJSON   = "valid-json"
	CheckRootMapping = "root-mapping"
	CheckHasBarTest  = "has-bar_test"
	CheckBarMapping  = "bar_test-mapping"
	CheckHasFooTest  = "has-foo_test"
	CheckFooValue    = "foo_test-value"
	CheckRootList    = "root-list"
	CheckLength      = "length"
	CheckAllStrings  = "all-strings"
	CheckContent     = "content"
	CheckIsDir       = "is-dir"
	CheckReadable    = "readable"
)

const (
	// BarFileName is the YAML file validated by BarYAML.
	BarFileName = "bar.yml"
	// DataFileName is the JSON file validated by DataJSON.
	DataFileName = "data.json"

	expectedFooTest = "zoo"
)

// ExpectedData is the exact content data.json must hold.
var ExpectedData = []string{"Lorem", "Ipsum", "Dolor", "Sit", "Amet"}

// Error describes the first failed check for one file.
type Error struct {
	File   string
	Check  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s check failed", e.File, e.Check)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(file, check, detail string, err error) *Error {
	return &Error{File: file, Check: check, Detail: detail, Err: err}
}

// readNonEmpty runs the exists and not-empty checks and returns the file content.
func readNonEmpty(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fail(path, CheckExists, "", err)
	}
	if info.Size() == 0 {
		return nil, fail(path, CheckNotEmpty, "file should not be empty", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fail(path, CheckExists, "", err)
	}
	return data, nil
}

// ConfigDir checks that dir exists, is a directory and can be listed.
func ConfigDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fail(dir, CheckExists, "", err)
	}
	if !info.IsDir() {
		return fail(dir, CheckIsDir, "config path should be a directory", nil)
	}
	f, err := os.Open(dir)
	if err != nil {
		return fail(dir, CheckReadable, "", err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fail(dir, CheckReadable, "", err)
	}
	return nil
}

// SharedConfig validates the shared config directory of p and both files in it.
// Every failure is returned; results are logged through the logger on ctx.
func SharedConfig(ctx context.Context, p paths.ProjectPaths) []error {
	log := logr.FromContextOrDiscard(ctx)
	dir := p.SharedConfig()

	checks := []struct {
		name string
		run  func() error
	}{
		{"config directory", func() error { return ConfigDir(dir) }},
		{BarFileName, func() error { return BarYAML(filepath.Join(dir, BarFileName)) }},
		{DataFileName, func() error { return DataJSON(filepath.Join(dir, DataFileName)) }},
	}

	var errs []error
	for _, c := range checks {
		if err := c.run(); err != nil {
			log.Info("validation failed", "target", c.name, "error", err.Error())
			errs = append(errs, err)
			continue
		}
		log.Info("validation passed", "target", c.name)
	}
	return errs
}
