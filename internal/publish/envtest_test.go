//go:build envtest
// +build envtest

package publish

import (
	"context"
	"os"
	"testing"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/envtest"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/dab-demo/dab-demo/internal/paths"
)

// TestPublish_APIServer runs against a real kube-apiserver started by envtest.
// Requires KUBEBUILDER_ASSETS (see setup-envtest).
func TestPublish_APIServer(t *testing.T) {
	if os.Getenv("KUBEBUILDER_ASSETS") == "" {
		t.Skip("KUBEBUILDER_ASSETS not set")
	}
	logf.SetLogger(zap.New(zap.WriteTo(nil)))

	testEnv := &envtest.Environment{}
	cfg, err := testEnv.Start()
	if err != nil {
		t.Fatalf("failed to start envtest: %v", err)
	}
	t.Cleanup(func() {
		if err := testEnv.Stop(); err != nil {
			t.Errorf("failed to stop envtest: %v", err)
		}
	})

	c, err := client.New(cfg, client.Options{Scheme: scheme.Scheme})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx := context.Background()
	const ns = "dab-demo"

	if _, err := EnsureNamespace(ctx, c, ns); err != nil {
		t.Fatalf("EnsureNamespace failed: %v", err)
	}

	cm, err := BuildConfigMap(ctx, paths.FromSource(), ns, "common-framework-config")
	if err != nil {
		t.Fatalf("BuildConfigMap failed: %v", err)
	}

	result, err := Apply(ctx, c, cm)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if result != controllerutil.OperationResultCreated {
		t.Errorf("first apply: got %q, want %q", result, controllerutil.OperationResultCreated)
	}

	result, err = Apply(ctx, c, cm)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if result != controllerutil.OperationResultNone {
		t.Errorf("second apply: got %q, want %q", result, controllerutil.OperationResultNone)
	}

	got := &corev1.ConfigMap{}
	if err := c.Get(ctx, client.ObjectKeyFromObject(cm), got); err != nil {
		t.Fatalf("failed to get ConfigMap: %v", err)
	}
	if got.Labels[LabelContentHash] != cm.Labels[LabelContentHash] {
		t.Errorf("content hash: got %q, want %q", got.Labels[LabelContentHash], cm.Labels[LabelContentHash])
	}
}
