// Package kube wraps the Kubernetes API for the cluster-side resources the
// provisioner manages.
//
// Like the aws package it exposes narrow DTOs and reports absence as a nil
// DTO, never as an error. Mutations go through server-side apply so that
// repeated runs converge on the same object without clobbering fields owned
// by other controllers.
package kube

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Client wraps the typed Kubernetes clientset.
type Client struct {
	clientset kubernetes.Interface
}

// NewFromKubeconfig builds a client from kubeconfig bytes. The kubeconfig
// never touches disk.
func NewFromKubeconfig(kubeconfig []byte) (*Client, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewFromClientset wraps a pre-built clientset. Tests use this with the
// client-go fake.
func NewFromClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}
