package kube

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	applycorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/anneal-io/anneal/internal/util/ownership"
)

// ServiceAccount is the observed state of a Kubernetes ServiceAccount.
type ServiceAccount struct {
	Namespace   string
	Name        string
	Annotations map[string]string
	Labels      map[string]string
}

// GetServiceAccount returns the service account or nil when it does not
// exist.
func (c *Client) GetServiceAccount(ctx context.Context, namespace, name string) (*ServiceAccount, error) {
	sa, err := c.clientset.CoreV1().ServiceAccounts(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get service account %s/%s: %w", namespace, name, err)
	}

	return &ServiceAccount{
		Namespace:   sa.Namespace,
		Name:        sa.Name,
		Annotations: sa.Annotations,
		Labels:      sa.Labels,
	}, nil
}

// ApplyServiceAccount creates or converges a service account through
// server-side apply. Only the fields named here are owned; annotations and
// labels set by other field managers are left alone.
func (c *Client) ApplyServiceAccount(ctx context.Context, sa ServiceAccount) error {
	if sa.Namespace == "" {
		return fmt.Errorf("service account namespace is required")
	}
	if sa.Name == "" {
		return fmt.Errorf("service account name is required")
	}

	apply := applycorev1.ServiceAccount(sa.Name, sa.Namespace)
	if len(sa.Labels) > 0 {
		apply = apply.WithLabels(sa.Labels)
	}
	if len(sa.Annotations) > 0 {
		apply = apply.WithAnnotations(sa.Annotations)
	}

	_, err := c.clientset.CoreV1().ServiceAccounts(sa.Namespace).Apply(ctx, apply, metav1.ApplyOptions{
		FieldManager: ownership.Manager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply service account %s/%s: %w", sa.Namespace, sa.Name, err)
	}
	return nil
}
