package kube

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/anneal-io/anneal/internal/util/ptr"
)

func testDeployment(desired, updated, available int32, generation, observed int64) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:       "ingress-controller",
			Namespace:  "kube-system",
			Generation: generation,
		},
		Spec: appsv1.DeploymentSpec{Replicas: ptr.To(desired)},
		Status: appsv1.DeploymentStatus{
			Replicas:           updated,
			UpdatedReplicas:    updated,
			AvailableReplicas:  available,
			ObservedGeneration: observed,
		},
	}
}

func TestDeploymentStatus_NotCreatedYet(t *testing.T) {
	t.Parallel()

	c := NewFromClientset(fake.NewClientset())

	done, status, err := c.DeploymentStatus(context.Background(), "kube-system", "ingress-controller")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Contains(t, status, "not created yet")
}

func TestDeploymentStatus_Progressing(t *testing.T) {
	t.Parallel()

	deployment := testDeployment(3, 3, 1, 1, 1)
	c := NewFromClientset(fake.NewClientset(deployment))

	done, status, err := c.DeploymentStatus(context.Background(), "kube-system", "ingress-controller")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, "3/3 replicas updated, 1/3 available", status)
}

func TestDeploymentStatus_Converged(t *testing.T) {
	t.Parallel()

	deployment := testDeployment(3, 3, 3, 2, 2)
	c := NewFromClientset(fake.NewClientset(deployment))

	done, status, err := c.DeploymentStatus(context.Background(), "kube-system", "ingress-controller")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "3/3 replicas updated, 3/3 available", status)
}

func TestDeploymentStatus_StaleObservedGeneration(t *testing.T) {
	t.Parallel()

	// The controller has not seen the latest spec yet: replica counts line
	// up but against the previous generation.
	deployment := testDeployment(3, 3, 3, 5, 4)
	c := NewFromClientset(fake.NewClientset(deployment))

	done, _, err := c.DeploymentStatus(context.Background(), "kube-system", "ingress-controller")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestPodLogs(t *testing.T) {
	t.Parallel()

	pods := []*corev1.Pod{
		{ObjectMeta: metav1.ObjectMeta{
			Name:      "ingress-controller-abc",
			Namespace: "kube-system",
			Labels:    map[string]string{"app": "ingress-controller"},
		}},
		{ObjectMeta: metav1.ObjectMeta{
			Name:      "ingress-controller-def",
			Namespace: "kube-system",
			Labels:    map[string]string{"app": "ingress-controller"},
		}},
	}
	c := NewFromClientset(fake.NewClientset(pods[0], pods[1]))

	lines, err := c.PodLogs(context.Background(), "kube-system", "app=ingress-controller", 40)
	require.NoError(t, err)
	// The fake clientset serves a fixed log body per pod.
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ingress-controller-")
	assert.Contains(t, lines[0], "fake logs")
}

func TestPodLogs_NoMatchingPods(t *testing.T) {
	t.Parallel()

	c := NewFromClientset(fake.NewClientset())

	lines, err := c.PodLogs(context.Background(), "kube-system", "app=missing", 40)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
