package publish

import (
	"context"
	"errors"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
)

func TestEnsureNamespace(t *testing.T) {
	ctx := context.Background()
	c := newFakeClient(t)

	created, err := EnsureNamespace(ctx, c, "analytics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected namespace to be created")
	}

	ns := &corev1.Namespace{}
	if err := c.Get(ctx, client.ObjectKey{Name: "analytics"}, ns); err != nil {
		t.Fatalf("failed to get namespace: %v", err)
	}
	if ns.Labels[LabelManagedBy] != ManagedBy {
		t.Errorf("managed-by label: got %q", ns.Labels[LabelManagedBy])
	}

	created, err = EnsureNamespace(ctx, c, "analytics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("existing namespace reported as created")
	}
}

func TestEnsureNamespace_ExistingIsUntouched(t *testing.T) {
	ctx := context.Background()
	existing := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "team", Labels: map[string]string{"owner": "data"}}}
	c := fake.NewClientBuilder().WithScheme(newFakeClient(t).Scheme()).WithObjects(existing).Build()

	if _, err := EnsureNamespace(ctx, c, "team"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ns := &corev1.Namespace{}
	if err := c.Get(ctx, client.ObjectKey{Name: "team"}, ns); err != nil {
		t.Fatalf("failed to get namespace: %v", err)
	}
	if _, ok := ns.Labels[LabelManagedBy]; ok {
		t.Error("existing namespace was relabelled")
	}
}

func TestEnsureNamespace_GetError(t *testing.T) {
	boom := errors.New("apiserver unavailable")
	c := fake.NewClientBuilder().
		WithScheme(newFakeClient(t).Scheme()).
		WithInterceptorFuncs(interceptor.Funcs{
			Get: func(ctx context.Context, c client.WithWatch, key client.ObjectKey, obj client.Object, opts ...client.GetOption) error {
				return boom
			},
		}).
		Build()

	if _, err := EnsureNamespace(context.Background(), c, "x"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped Get error, got %v", err)
	}
}
