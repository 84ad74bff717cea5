package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalSession reads tables stored as JSON arrays of rows: table a.b.c lives
// at <dir>/a/b/c.json.
type LocalSession struct {
	dir string
}

// NewLocal creates a session over the JSON tables under dir.
func NewLocal(dir string) *LocalSession {
	return &LocalSession{dir: dir}
}

// Table returns the named table.
func (s *LocalSession) Table(name string) Table {
	return &localTable{session: s, name: name}
}

// Close is a no-op for local sessions.
func (s *LocalSession) Close() error {
	return nil
}

func (s *LocalSession) tablePath(name string) string {
	parts := strings.Split(name, ".")
	parts[len(parts)-1] += ".json"
	return filepath.Join(append([]string{s.dir}, parts...)...)
}

type localTable struct {
	session *LocalSession
	name    string
}

// Count returns the number of rows in the table file.
func (t *localTable) Count(ctx context.Context) (int64, error) {
	if err := validateTableName(t.name); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path := t.session.tablePath(t.name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", t.name, ErrTableNotFound)
		}
		return 0, fmt.Errorf("failed to read table %s: %w", t.name, err)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, fmt.Errorf("failed to parse table %s: %w", t.name, err)
	}
	return int64(len(rows)), nil
}
