// Package testing provides helpers for tests that need a bundle project on disk
// or shared config objects in a cluster.
//
// Example - lay out a project with the default shared config files:
//
//	p, err := testing.NewProject(t.TempDir(), testing.ProjectOptions{})
//	if err != nil {
//	    t.Fatalf("failed to create project: %v", err)
//	}
//	cfg, err := foo.ParseBar(p)
//
// Example - seed a cluster with a ConfigMap to exercise the update path:
//
//	cm, err := testing.CreateTestConfigMap(ctx, k8sClient, "default", "shared-config", map[string]string{
//	    "bar.yml": "bar_test:\n  foo_test: old\n",
//	})
package testing

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"
)

// CreateTestConfigMap creates a ConfigMap holding data in the given namespace.
func CreateTestConfigMap(ctx context.Context, c client.Client, namespace, name string, data map[string]string) (*corev1.ConfigMap, error) {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Data: data,
	}

	if err := c.Create(ctx, cm); err != nil {
		return nil, fmt.Errorf("failed to create ConfigMap: %w", err)
	}

	return cm, nil
}

// convertToYAML converts a Go value to YAML text.
// Used internally by the project helpers.
func convertToYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal values to YAML: %w", err)
	}
	return string(data), nil
}
