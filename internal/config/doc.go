// Package config loads and validates the provisioner's desired state.
//
// A run is described by one YAML file: the cluster's OIDC issuer, the AWS
// surface (region, policy, subnet tags), and the ingress controller chart.
// Load parses the file, fills defaults, and validates it; BuildSpecs turns
// the validated config into the resource specs the engine reconciles.
// Timeout and retry tuning comes from ANNEAL_* environment variables, not
// the file, so operational knobs never end up committed.
package config
