package vault

// Query addresses items inside a platform backend. The base query is
// built once at vault construction; per-call effective queries augment
// it with the live authentication context and an optional user-facing
// prompt string.
type Query struct {
	// Service is the canonical namespace descriptor of the vault.
	Service string

	// AccessGroup is the shared access group identifier, empty for
	// private vaults.
	AccessGroup string

	// Access is the protection policy items are stored under.
	Access AccessControl

	// HardwareBacked selects the protected store. The reachability
	// probe clears it to address the non-authenticated sibling store
	// instead.
	HardwareBacked bool

	// Context carries the authentication session for single-prompt
	// reads. Nil means the platform must demand fresh authentication.
	Context *AuthContext

	// Prompt is a display-only reason shown on the authentication
	// dialog. Empty prompts are omitted, never passed through.
	Prompt string
}

// baseQuery builds the per-vault query fragment shared by all calls.
func baseQuery(descriptor string, scope Scope, flavor Flavor) Query {
	q := Query{
		Service:        descriptor,
		Access:         flavor.access,
		HardwareBacked: true,
	}
	if scope.shared {
		q.AccessGroup = scope.group
	}
	return q
}
