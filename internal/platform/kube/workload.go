package kube

import (
	"bufio"
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/anneal-io/anneal/internal/util/ptr"
)

// DeploymentStatus reports whether a deployment's rollout has converged and
// a snapshot of where it stands. A deployment that does not exist yet is a
// pending rollout, not an error: the chart may still be creating it.
func (c *Client) DeploymentStatus(ctx context.Context, namespace, name string) (bool, string, error) {
	deployment, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if errors.IsNotFound(err) {
			return false, fmt.Sprintf("deployment %s/%s not created yet", namespace, name), nil
		}
		return false, "", fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}

	desired := int32(1)
	if deployment.Spec.Replicas != nil {
		desired = *deployment.Spec.Replicas
	}

	status := fmt.Sprintf("%d/%d replicas updated, %d/%d available",
		deployment.Status.UpdatedReplicas, desired,
		deployment.Status.AvailableReplicas, desired)

	done := deployment.Generation <= deployment.Status.ObservedGeneration &&
		deployment.Status.UpdatedReplicas == desired &&
		deployment.Status.Replicas == desired &&
		deployment.Status.AvailableReplicas == desired

	return done, status, nil
}

// PodLogs returns the most recent log lines of pods matching the selector,
// each prefixed with its pod name. Pods whose logs cannot be read are
// skipped: diagnostics stay best effort.
func (c *Client) PodLogs(ctx context.Context, namespace, labelSelector string, tailLines int) ([]string, error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}

	var lines []string
	for i := range pods.Items {
		pod := &pods.Items[i]
		req := c.clientset.CoreV1().Pods(namespace).GetLogs(pod.Name, &corev1.PodLogOptions{
			TailLines: ptr.To(int64(tailLines)),
		})
		stream, err := req.Stream(ctx)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(stream)
		for scanner.Scan() {
			lines = append(lines, fmt.Sprintf("%s: %s", pod.Name, scanner.Text()))
		}
		_ = stream.Close()
	}
	return lines, nil
}
