// Package values loads the YAML and JSON config files of the bundle project and
// turns them into flat bundle variables.
package values

import "context"

// Source is one YAML file or inline YAML snippet contributing bundle variables.
type Source struct {
	// Path is the YAML file to read.
	Path string
	// Inline is a YAML mapping given directly, e.g. "schema: other".
	// When set, Path is ignored.
	Inline string
	// Optional sources are skipped when the file does not exist.
	Optional bool
}

// Resolver reads and merges variables from YAML sources.
type Resolver interface {
	// ResolveVars reads every source and merges them into a flat map.
	// Sources are processed in order; later sources override earlier ones.
	// Returns error if any required source is missing or malformed.
	ResolveVars(ctx context.Context, sources []Source) (map[string]string, error)
}
