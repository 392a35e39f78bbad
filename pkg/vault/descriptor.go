package vault

import (
	"net/url"
	"strings"
)

// descriptorPrefix versions the descriptor format. Descriptors are used
// as persistent namespace keys in the platform store, so the encoding
// must stay stable across releases.
const descriptorPrefix = "keyguard.v1"

// serviceDescriptor builds the canonical namespace string for a vault.
// Every field is escaped before joining, so no two distinct
// (identifier, scope, flavor) triples produce the same descriptor.
func serviceDescriptor(identifier string, scope Scope, flavor Flavor) string {
	parts := []string{
		descriptorPrefix,
		url.QueryEscape(identifier),
		flavor.kind.tag(),
		url.QueryEscape(string(flavor.access)),
	}
	if scope.shared {
		parts = append(parts, "group", url.QueryEscape(scope.group))
	} else {
		parts = append(parts, "private")
	}
	return strings.Join(parts, "|")
}
