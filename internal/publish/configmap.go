// Package publish packages the shared framework config into a Kubernetes ConfigMap.
package publish

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/dab-demo/dab-demo/internal/paths"
	"github.com/dab-demo/dab-demo/internal/validate"
)

const (
	// ManagedBy is the value of the app.kubernetes.io/managed-by label.
	ManagedBy = "dab-demo"

	LabelManagedBy   = "app.kubernetes.io/managed-by"
	LabelPartOf      = "app.kubernetes.io/part-of"
	LabelContentHash = "dab-demo.io/content-hash"
)

// Builder creates ConfigMaps from a project's shared config directory.
type Builder struct {
	paths     paths.ProjectPaths
	namespace string
	name      string
}

// NewBuilder creates a new ConfigMap builder for the project at p.
func NewBuilder(p paths.ProjectPaths) *Builder {
	return &Builder{paths: p, namespace: "default", name: "common-framework-config"}
}

// WithNamespace sets the namespace of the ConfigMap.
func (b *Builder) WithNamespace(namespace string) *Builder {
	b.namespace = namespace
	return b
}

// WithName sets the name of the ConfigMap.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// Build validates the shared config and returns a ConfigMap holding every
// regular file of the directory, keyed by file name.
func (b *Builder) Build(ctx context.Context) (*corev1.ConfigMap, error) {
	if errs := validation.IsDNS1123Subdomain(b.name); len(errs) > 0 {
		return nil, fmt.Errorf("invalid ConfigMap name %q: %v", b.name, errs)
	}
	if errs := validation.IsDNS1123Label(b.namespace); len(errs) > 0 {
		return nil, fmt.Errorf("invalid namespace %q: %v", b.namespace, errs)
	}

	if errs := validate.SharedConfig(ctx, b.paths); len(errs) > 0 {
		return nil, fmt.Errorf("shared config is invalid: %w", errors.Join(errs...))
	}

	data, err := readDir(ctx, b.paths.SharedConfig())
	if err != nil {
		return nil, err
	}

	labels := map[string]string{
		LabelManagedBy:   ManagedBy,
		LabelPartOf:      b.paths.ProjectName(),
		LabelContentHash: contentHash(data),
	}

	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      b.name,
			Namespace: b.namespace,
			Labels:    labels,
		},
		Data: data,
	}, nil
}

// BuildConfigMap is shorthand for NewBuilder(p).WithNamespace(namespace).WithName(name).Build.
func BuildConfigMap(ctx context.Context, p paths.ProjectPaths, namespace, name string) (*corev1.ConfigMap, error) {
	return NewBuilder(p).WithNamespace(namespace).WithName(name).Build(ctx)
}

// readDir returns the content of every regular file directly under dir.
// Files whose names cannot be ConfigMap keys are logged and left out.
func readDir(ctx context.Context, dir string) (map[string]string, error) {
	log := logr.FromContextOrDiscard(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	data := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if errs := validation.IsConfigMapKey(e.Name()); len(errs) > 0 {
			log.Info("skipping file that is not a valid ConfigMap key", "file", e.Name(), "reason", errs)
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		data[e.Name()] = string(content)
	}
	return data, nil
}

// contentHash is deterministic for equal data, so unchanged config yields an unchanged label.
func contentHash(data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New32a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(data[k]))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%08x", h.Sum32())
}
