// Package session provides a minimal query session over named tables: either a
// remote SQL warehouse or JSON files on disk.
package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-logr/logr"
)

// ErrTableNotFound is returned when a table does not exist.
var ErrTableNotFound = errors.New("table not found")

// Session is an opaque handle to a query engine.
type Session interface {
	// Table returns a handle to the named table. The table is not checked until used.
	Table(name string) Table
	Close() error
}

// Table is a queryable table.
type Table interface {
	Count(ctx context.Context) (int64, error)
}

// Config selects and configures the session implementation.
type Config struct {
	// Host, Token and WarehouseID select a remote session when all are set.
	Host        string
	Token       string
	WarehouseID string
	// TablesDir is the root of local JSON tables.
	TablesDir string
}

// Remote reports whether cfg carries everything a remote session needs.
func (c Config) Remote() bool {
	return c.Host != "" && c.Token != "" && c.WarehouseID != ""
}

// New returns a remote session when remote settings are available, otherwise a local one.
func New(ctx context.Context, cfg Config) (Session, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("session")

	if cfg.Remote() {
		log.Info("using remote session", "host", cfg.Host, "warehouse", cfg.WarehouseID)
		return NewRemote(cfg.Host, cfg.Token, cfg.WarehouseID), nil
	}
	if cfg.TablesDir == "" {
		return nil, errors.New("no remote settings and no local tables directory")
	}
	log.Info("using local session", "dir", cfg.TablesDir)
	return NewLocal(cfg.TablesDir), nil
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// validateTableName accepts one to three dot-separated identifiers.
func validateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}
