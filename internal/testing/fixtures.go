package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// FixturePath returns the path of a fixture under internal/testing/testdata.
func FixturePath(elem ...string) string {
	return filepath.Join(append([]string{fixtureDir()}, elem...)...)
}

// ReadFixture returns the raw content of a fixture file.
func ReadFixture(elem ...string) ([]byte, error) {
	path := FixturePath(elem...)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %q: %w", path, err)
	}
	return data, nil
}

// fixtureDir returns the path to the testdata directory.
// It locates the directory relative to this file's location using runtime.Caller.
func fixtureDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "internal/testing/testdata"
	}
	return filepath.Join(filepath.Dir(file), "testdata")
}
