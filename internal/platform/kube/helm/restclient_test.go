package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
    insecure-skip-tls-verify: true
  name: test-cluster
contexts:
- context:
    cluster: test-cluster
    user: test-user
    namespace: kube-system
  name: test-context
current-context: test-context
users:
- name: test-user
  user:
    token: test-token
`

func TestKubeConfigGetter_ToRESTConfig(t *testing.T) {
	t.Parallel()

	getter := newKubeConfigGetter([]byte(testKubeconfig), "kube-system")

	restConfig, err := getter.ToRESTConfig()
	require.NoError(t, err)
	require.NotNil(t, restConfig)
	assert.Equal(t, "https://127.0.0.1:6443", restConfig.Host)
	assert.Equal(t, "test-token", restConfig.BearerToken)
}

func TestKubeConfigGetter_CachesRESTConfig(t *testing.T) {
	t.Parallel()

	getter := newKubeConfigGetter([]byte(testKubeconfig), "kube-system")

	first, err := getter.ToRESTConfig()
	require.NoError(t, err)
	second, err := getter.ToRESTConfig()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestKubeConfigGetter_InvalidKubeconfig(t *testing.T) {
	t.Parallel()

	getter := newKubeConfigGetter([]byte("not valid yaml: {{{{"), "default")

	_, err := getter.ToRESTConfig()
	assert.Error(t, err)
}

func TestKubeConfigGetter_ToRawKubeConfigLoader(t *testing.T) {
	t.Parallel()

	getter := newKubeConfigGetter([]byte(testKubeconfig), "kube-system")

	loader := getter.ToRawKubeConfigLoader()
	require.NotNil(t, loader)

	namespace, _, err := loader.Namespace()
	require.NoError(t, err)
	assert.Equal(t, "kube-system", namespace)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient([]byte(testKubeconfig), "kube-system")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "kube-system", client.namespace)
}
