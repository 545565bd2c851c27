package resources

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Attribute names understood by the handlers. Spec builders and probes use
// the same vocabulary so desired and observed state compare key by key.
const (
	// AttrClientID is the OIDC audience the identity provider accepts.
	AttrClientID = "client_id"
	// AttrThumbprint is the CA thumbprint registered with the provider.
	AttrThumbprint = "thumbprint"
	// AttrDocument is an IAM policy document as canonical JSON.
	AttrDocument = "document"
	// AttrRoleARN is the IAM role a service account binds to.
	AttrRoleARN = "role_arn"
	// AttrChart, AttrVersion, AttrRepo and AttrNamespace locate a Helm
	// release; AttrValues carries its values as canonical JSON.
	AttrChart     = "chart"
	AttrVersion   = "version"
	AttrRepo      = "repo"
	AttrNamespace = "namespace"
	AttrValues    = "values"
	// AttrWorkload names the Deployment whose rollout gates convergence.
	AttrWorkload = "workload"
	// AttrSelector is the pod label selector used when collecting logs.
	AttrSelector = "selector"
)

// CanonicalJSON reparses a JSON document into a stable form: object keys
// sorted, insignificant whitespace dropped. Spec builders and probes both
// run documents through it so equal documents compare equal as strings.
func CanonicalJSON(document string) (string, error) {
	var parsed any
	if err := json.Unmarshal([]byte(document), &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON document: %w", err)
	}
	out, err := json.Marshal(parsed)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// splitObjectKey splits a namespace/name key.
func splitObjectKey(key string) (namespace, name string, err error) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("key %q must have the form namespace/name", key)
	}
	return parts[0], parts[1], nil
}
