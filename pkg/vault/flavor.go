package vault

// AccessControl names the hardware policy items are protected with. The
// core treats it as an opaque descriptor and passes it through to the
// platform inside the query.
type AccessControl string

// Predefined access-control policies. Platforms may accept others.
const (
	AccessControlUserPresence       AccessControl = "user-presence"
	AccessControlDevicePasscode     AccessControl = "device-passcode"
	AccessControlBiometryCurrentSet AccessControl = "biometry-current-set"
)

// accessControlAfterFirstUnlock is the non-authenticated accessibility
// level used by the reachability probe. It is never applied to items.
const accessControlAfterFirstUnlock AccessControl = "after-first-unlock"

type flavorKind int

const (
	flavorSinglePrompt flavorKind = iota
	flavorAlwaysPrompt
)

func (k flavorKind) tag() string {
	if k == flavorAlwaysPrompt {
		return "always-prompt"
	}
	return "single-prompt"
}

// Flavor governs how often the platform demands user authentication for
// reads from a vault.
type Flavor struct {
	kind   flavorKind
	access AccessControl
}

// SinglePrompt returns a flavor where one successful authentication
// covers subsequent reads until the context is invalidated.
func SinglePrompt(access AccessControl) Flavor {
	return Flavor{kind: flavorSinglePrompt, access: access}
}

// AlwaysPrompt returns a flavor where every read demands fresh
// authentication.
func AlwaysPrompt(access AccessControl) Flavor {
	return Flavor{kind: flavorAlwaysPrompt, access: access}
}

// Access returns the underlying access-control policy.
func (f Flavor) Access() AccessControl {
	return f.access
}

// reusesContext reports whether the authentication context is attached
// to effective queries so one prompt covers multiple reads.
func (f Flavor) reusesContext() bool {
	return f.kind == flavorSinglePrompt
}

func (f Flavor) String() string {
	return f.kind.tag() + "/" + string(f.access)
}

// Scope determines whether a vault's namespace is private to the
// process owner or shared across an access group of co-signed
// applications.
type Scope struct {
	group  string
	shared bool
}

// Private returns the process-private scope.
func Private() Scope {
	return Scope{}
}

// SharedGroup returns a scope shared across the named access group.
func SharedGroup(group string) Scope {
	return Scope{group: group, shared: true}
}

// Shared reports whether the scope names a shared access group.
func (s Scope) Shared() bool {
	return s.shared
}

// Group returns the access group identifier, empty for private scopes.
func (s Scope) Group() string {
	return s.group
}
