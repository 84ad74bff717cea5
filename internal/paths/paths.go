// Package paths resolves the well-known directories of the demo bundle project.
//
// A ProjectPaths value is built once from an explicit project root and handed to
// whoever needs a directory. Nothing here touches the filesystem: whether a
// directory exists is the caller's concern.
package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// ProjectDirName is the directory of the demo project inside the repository.
	ProjectDirName = "dab_demo"
	// SharedFrameworkDirName is the sibling directory shared by every demo project.
	SharedFrameworkDirName = "common_framework"

	resourcesDirName = "resources"
	testsDirName     = "tests"
	configDirName    = "config"
)

// ProjectPaths is an immutable set of named directories derived from one project root.
type ProjectPaths struct {
	root string
}

// New returns ProjectPaths rooted at root, made absolute and cleaned.
func New(root string) (ProjectPaths, error) {
	if root == "" {
		return ProjectPaths{}, errors.New("project root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("failed to resolve project root %q: %w", root, err)
	}
	return ProjectPaths{root: abs}, nil
}

// MustNew is like New but panics on error.
func MustNew(root string) ProjectPaths {
	p, err := New(root)
	if err != nil {
		panic(err)
	}
	return p
}

// Root returns the project root.
func (p ProjectPaths) Root() string {
	return p.root
}

// ProjectName returns the base name of the project root.
func (p ProjectPaths) ProjectName() string {
	return filepath.Base(p.root)
}

// Resources returns the bundle resources directory.
func (p ProjectPaths) Resources() string {
	return filepath.Join(p.root, resourcesDirName)
}

// Tests returns the project tests directory.
func (p ProjectPaths) Tests() string {
	return filepath.Join(p.root, testsDirName)
}

// Config returns the project-local config directory.
func (p ProjectPaths) Config() string {
	return filepath.Join(p.root, configDirName)
}

// CommonFramework returns the shared framework directory, a sibling of the project root.
func (p ProjectPaths) CommonFramework() string {
	return filepath.Join(filepath.Dir(p.root), SharedFrameworkDirName)
}

// SharedConfig returns the config directory of the shared framework.
func (p ProjectPaths) SharedConfig() string {
	return filepath.Join(p.CommonFramework(), configDirName)
}

// Join joins elem onto the project root.
func (p ProjectPaths) Join(elem ...string) string {
	return filepath.Join(append([]string{p.root}, elem...)...)
}

func (p ProjectPaths) String() string {
	return p.root
}

// SourceRoot returns the repository root: two levels above this package's source directory.
func SourceRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// FromSource returns ProjectPaths for the demo project of the repository this
// package was compiled from.
func FromSource() ProjectPaths {
	return MustNew(filepath.Join(SourceRoot(), ProjectDirName))
}

var (
	defaultOnce  sync.Once
	defaultPaths ProjectPaths
)

// Default returns the process-wide ProjectPaths computed from the source tree.
// The first call fixes the root for the lifetime of the process; callers that
// need another root build their own value with New.
func Default() ProjectPaths {
	defaultOnce.Do(func() {
		defaultPaths = FromSource()
	})
	return defaultPaths
}
