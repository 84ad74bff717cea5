package publish

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/yaml"
)

// Apply creates the ConfigMap or updates the existing one to match desired.
// Labels not owned by dab-demo are preserved.
func Apply(ctx context.Context, c client.Client, desired *corev1.ConfigMap) (controllerutil.OperationResult, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("configmap", client.ObjectKeyFromObject(desired))

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      desired.Name,
			Namespace: desired.Namespace,
		},
	}

	result, err := controllerutil.CreateOrUpdate(ctx, c, cm, func() error {
		if cm.Labels == nil {
			cm.Labels = map[string]string{}
		}
		for k, v := range desired.Labels {
			cm.Labels[k] = v
		}
		cm.Data = desired.Data
		cm.BinaryData = nil
		return nil
	})
	if err != nil {
		return controllerutil.OperationResultNone, fmt.Errorf("failed to apply ConfigMap: %w", err)
	}

	log.Info("applied shared config", "result", result)
	return result, nil
}

// RenderYAML returns the manifest of cm.
func RenderYAML(cm *corev1.ConfigMap) ([]byte, error) {
	out := cm.DeepCopy()
	out.TypeMeta = metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"}
	out.ResourceVersion = ""
	out.UID = ""
	out.CreationTimestamp = metav1.Time{}
	out.ManagedFields = nil

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ConfigMap: %w", err)
	}
	return data, nil
}
