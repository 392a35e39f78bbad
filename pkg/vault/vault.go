package vault

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

// probeKey names the canary item written by the reachability probe.
const probeKey = "keyguard-reachability-probe"

// Vault is a user-presence-gated key-value store addressed by an
// identifier and an access-control flavor. Obtain it through Obtain or
// ObtainShared; the zero value is unusable and its methods panic.
type Vault struct {
	identifier string
	scope      Scope
	flavor     Flavor
	descriptor string
	base       Query
	platform   Platform

	// mu serializes every public operation, so at most one platform
	// call per vault is in flight at a time. authCtx is guarded by it.
	mu      sync.Mutex
	authCtx *AuthContext
}

func newVault(identifier string, scope Scope, flavor Flavor, descriptor string, platform Platform) *Vault {
	return &Vault{
		identifier: identifier,
		scope:      scope,
		flavor:     flavor,
		descriptor: descriptor,
		base:       baseQuery(descriptor, scope, flavor),
		platform:   platform,
		authCtx:    NewAuthContext(),
	}
}

// guard aborts on a vault that bypassed Obtain. Programmer misuse, not
// a runtime condition.
func (v *Vault) guard() {
	if v.platform == nil {
		panic("keyguard: Vault must be obtained through vault.Obtain or vault.ObtainShared")
	}
}

// Identifier returns the vault's logical namespace identity.
func (v *Vault) Identifier() string {
	return v.identifier
}

// Flavor returns the vault's access-control flavor.
func (v *Vault) Flavor() Flavor {
	return v.flavor
}

// Descriptor returns the canonical service descriptor. Two vaults are
// the same vault exactly when their descriptors are equal.
func (v *Vault) Descriptor() string {
	return v.descriptor
}

// Equal reports whether other addresses the same vault.
func (v *Vault) Equal(other *Vault) bool {
	return other != nil && v.descriptor == other.descriptor
}

// effectiveQueryLocked builds the query for one call. Callers hold mu.
func (v *Vault) effectiveQueryLocked(prompt string) Query {
	q := v.base
	if v.flavor.reusesContext() {
		q.Context = v.authCtx
	}
	if prompt != "" {
		q.Prompt = prompt
	}
	return q
}

// Set stores data under key. Any existing item is removed first:
// updating a protected item in place can trigger a re-authentication
// prompt on the update path, which must never happen silently on a
// write. Removal failure is ignored since absence of a prior item is
// the common case. The returned error is always ErrOperationFailed and
// carries no failure subtype.
func (v *Vault) Set(data []byte, key string) error {
	v.guard()
	v.mu.Lock()
	defer v.mu.Unlock()

	q := v.effectiveQueryLocked("")
	v.platform.Remove(q, key)
	if st := v.platform.Set(q, key, data); st != StatusSuccess {
		return ErrOperationFailed
	}
	return nil
}

// SetString stores a text payload under key.
func (v *Vault) SetString(s, key string) error {
	return v.Set([]byte(s), key)
}

// Get returns the payload stored under key. A nil error means success;
// ErrUserCancelled means the user dismissed or failed the
// authentication prompt; ErrItemNotFound covers both true absence and
// every other platform failure.
func (v *Vault) Get(key string) ([]byte, error) {
	return v.GetWithPrompt(key, "")
}

// GetWithPrompt is Get with a display-only reason shown on the
// authentication dialog. An empty prompt is omitted from the query.
func (v *Vault) GetWithPrompt(key, prompt string) ([]byte, error) {
	v.guard()
	v.mu.Lock()
	defer v.mu.Unlock()

	q := v.effectiveQueryLocked(prompt)
	data, st := v.platform.Get(q, key)
	switch st {
	case StatusSuccess:
		return data, nil
	case StatusAuthFailed:
		return nil, ErrUserCancelled
	default:
		return nil, ErrItemNotFound
	}
}

// GetString returns the text payload stored under key.
func (v *Vault) GetString(key string) (string, error) {
	data, err := v.Get(key)
	return string(data), err
}

// GetStringWithPrompt is GetString with a display-only prompt reason.
func (v *Vault) GetStringWithPrompt(key, prompt string) (string, error) {
	data, err := v.GetWithPrompt(key, prompt)
	return string(data), err
}

// Contains reports whether an item exists under key without triggering
// an authentication prompt. An item that exists but sits behind a lock
// the query cannot open counts as present.
func (v *Vault) Contains(key string) bool {
	v.guard()
	v.mu.Lock()
	defer v.mu.Unlock()

	q := v.effectiveQueryLocked("")
	st := v.platform.Contains(q, key)
	return st == StatusSuccess || st == StatusInteractionNotAllowed
}

// CanAccessKeychain reports whether the platform store is reachable,
// without triggering a prompt and without touching the cached
// authentication context. It round-trips a canary through the
// non-authenticated sibling store under the same namespace.
func (v *Vault) CanAccessKeychain() bool {
	v.guard()
	v.mu.Lock()
	defer v.mu.Unlock()

	q := v.base
	q.HardwareBacked = false
	q.Access = accessControlAfterFirstUnlock
	q.Context = nil

	want := []byte(uuid.NewString())
	if st := v.platform.Set(q, probeKey, want); st != StatusSuccess {
		return false
	}
	got, st := v.platform.Get(q, probeKey)
	v.platform.Remove(q, probeKey)
	return st == StatusSuccess && bytes.Equal(got, want)
}

// RequirePromptOnNextAccess discards the cached authentication session,
// so the next read on a single-prompt vault demands fresh user
// presence. Safe but without effect on always-prompt vaults, which
// never attach a session to their queries.
func (v *Vault) RequirePromptOnNextAccess() {
	v.guard()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.authCtx = NewAuthContext()
}
