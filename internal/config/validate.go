package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	sigsyaml "sigs.k8s.io/yaml"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and the semantic rules the tags cannot
// express. The returned error names every offending field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return err
		}
		var details strings.Builder
		for i, fe := range fieldErrors {
			if i > 0 {
				details.WriteString("; ")
			}
			fmt.Fprintf(&details, "field %s failed on %q", fe.Namespace(), fe.Tag())
		}
		return errors.New(details.String())
	}

	if err := c.validatePolicyDocument(); err != nil {
		return err
	}
	return c.validateSubnets()
}

// validatePolicyDocument proves the document converts to JSON before any
// AWS call sees it.
func (c *Config) validatePolicyDocument() error {
	if _, err := sigsyaml.YAMLToJSON([]byte(c.Ingress.Policy.Document)); err != nil {
		return fmt.Errorf("ingress.policy.document is not valid YAML or JSON: %w", err)
	}
	return nil
}

// validateSubnets rejects duplicate subnet IDs: each subnet is one resource
// and a key may appear only once per run.
func (c *Config) validateSubnets() error {
	seen := make(map[string]bool, len(c.Subnets))
	for _, subnet := range c.Subnets {
		if seen[subnet.ID] {
			return fmt.Errorf("subnet %s is listed twice", subnet.ID)
		}
		seen[subnet.ID] = true
	}
	return nil
}
