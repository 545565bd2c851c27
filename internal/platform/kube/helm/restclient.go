package helm

import (
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// kubeConfigGetter satisfies helm's RESTClientGetter from in-memory
// kubeconfig bytes, sparing the caller a temporary kubeconfig file on disk.
type kubeConfigGetter struct {
	kubeconfig []byte
	namespace  string

	restConfig *rest.Config
}

func newKubeConfigGetter(kubeconfig []byte, namespace string) *kubeConfigGetter {
	return &kubeConfigGetter{
		kubeconfig: kubeconfig,
		namespace:  namespace,
	}
}

// ToRESTConfig parses the kubeconfig once and caches the result.
func (g *kubeConfigGetter) ToRESTConfig() (*rest.Config, error) {
	if g.restConfig != nil {
		return g.restConfig, nil
	}

	clientConfig, err := clientcmd.NewClientConfigFromBytes(g.kubeconfig)
	if err != nil {
		return nil, err
	}

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, err
	}

	g.restConfig = restConfig
	return g.restConfig, nil
}

// ToDiscoveryClient returns a memory-cached discovery client.
func (g *kubeConfigGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	restConfig, err := g.ToRESTConfig()
	if err != nil {
		return nil, err
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, err
	}

	return memory.NewMemCacheClient(discoveryClient), nil
}

// ToRESTMapper returns a mapper that discovers resources lazily.
func (g *kubeConfigGetter) ToRESTMapper() (meta.RESTMapper, error) {
	discoveryClient, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}

	return restmapper.NewDeferredDiscoveryRESTMapper(discoveryClient), nil
}

// ToRawKubeConfigLoader exposes the kubeconfig for namespace resolution.
func (g *kubeConfigGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	clientConfig, _ := clientcmd.NewClientConfigFromBytes(g.kubeconfig)
	return clientConfig
}
