package k8s

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/dreschagin/cluster-health-reporter/internal/domain/valueobject"
	"github.com/dreschagin/cluster-health-reporter/pkg/logger"
)

func node(name string, labels map[string]string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels,
		},
	}
}

func TestResolverDiscoversNodes(t *testing.T) {
	client := fake.NewSimpleClientset(
		node("kube502.home", nil),
		node("kube501.home", nil),
	)

	resolver := NewResolver(client, "", "kube-state-metrics:8080", "loki.home:3100", logger.New("error"))

	targets, err := resolver.Targets(context.Background())
	if err != nil {
		t.Fatalf("Targets() error = %v", err)
	}

	// 2 узла x (node + cadvisor) + kube-state-metrics + apiserver + loki
	if len(targets) != 7 {
		t.Fatalf("expected 7 targets, got %d", len(targets))
	}

	// узлы отсортированы по имени
	if targets[0].Name() != "kube501.home" || targets[0].Kind() != valueobject.KindNode {
		t.Fatalf("first target = (%s, %s), want (kube501.home, node)", targets[0].Name(), targets[0].Kind())
	}
	if targets[0].Instance() != "kube501.home:9100" {
		t.Fatalf("instance = %q, want kube501.home:9100", targets[0].Instance())
	}
}

func TestResolverAppliesSelector(t *testing.T) {
	client := fake.NewSimpleClientset(
		node("worker1", map[string]string{"role": "worker"}),
		node("control1", map[string]string{"role": "control-plane"}),
	)

	resolver := NewResolver(client, "role=worker", "kube-state-metrics:8080", "", logger.New("error"))

	targets, err := resolver.Targets(context.Background())
	if err != nil {
		t.Fatalf("Targets() error = %v", err)
	}

	for _, target := range targets {
		if target.Name() == "control1" {
			t.Fatal("selector did not filter out control1")
		}
	}
}

func TestResolverNoNodesIsError(t *testing.T) {
	resolver := NewResolver(fake.NewSimpleClientset(), "", "kube-state-metrics:8080", "", logger.New("error"))

	if _, err := resolver.Targets(context.Background()); err == nil {
		t.Fatal("expected error when no nodes matched")
	}
}
