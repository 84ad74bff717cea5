package values

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-logr/logr"
)

// FileResolver is the filesystem implementation of Resolver.
type FileResolver struct{}

// NewResolver creates a new Resolver reading from the local filesystem.
func NewResolver() Resolver {
	return &FileResolver{}
}

// ResolveVars reads, flattens and merges all sources in order.
func (r *FileResolver) ResolveVars(ctx context.Context, sources []Source) (map[string]string, error) {
	log := logr.FromContextOrDiscard(ctx)

	var allMaps []map[string]string
	for i, source := range sources {
		if source.Inline != "" {
			flat, err := parseYAML(source.Inline)
			if err != nil {
				return nil, fmt.Errorf("source %d: inline values: %w", i, err)
			}
			log.V(1).Info("loaded inline source", "keys", len(flat))
			allMaps = append(allMaps, flat)
			continue
		}
		if source.Path == "" {
			return nil, fmt.Errorf("source %d: path is empty", i)
		}

		doc, err := LoadYAML(source.Path)
		if err != nil {
			if source.Optional && errors.Is(err, fs.ErrNotExist) {
				log.V(1).Info("optional source not found, skipping", "path", source.Path)
				continue
			}
			return nil, fmt.Errorf("source %d: %w", i, err)
		}

		flat := Flatten(doc)
		log.V(1).Info("loaded source", "path", source.Path, "keys", len(flat))
		allMaps = append(allMaps, flat)
	}

	return mergeMaps(allMaps...), nil
}
