// Package ownership provides consistent ownership marking for provisioned
// resources.
//
// Every resource the provisioner creates is stamped with a managed-by
// marker: a tag on cloud resources, a label on cluster objects. Destructive
// operations such as force-reinstall check the marker first and refuse to
// touch anything that was not created by us.
package ownership

// Standard marker keys. Cloud resources use the anneal.io domain prefix;
// cluster objects use the conventional app.kubernetes.io key so that the
// marker shows up in standard tooling.
const (
	// TagKey marks cloud resources (IAM, EC2) created by the provisioner.
	TagKey = "anneal.io/managed-by"

	// LabelKey marks cluster objects created by the provisioner.
	LabelKey = "app.kubernetes.io/managed-by"

	// Manager is the value stored under both keys.
	Manager = "anneal"
)

// Tags returns the ownership tag set for cloud resources.
func Tags() map[string]string {
	return map[string]string{TagKey: Manager}
}

// Labels returns the ownership label set for cluster objects.
func Labels() map[string]string {
	return map[string]string{LabelKey: Manager}
}

// IsOwned reports whether the given tag or label set carries our marker.
func IsOwned(attrs map[string]string) bool {
	return attrs[TagKey] == Manager || attrs[LabelKey] == Manager
}
