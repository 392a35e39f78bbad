package vault

import (
	"runtime"
	"sync"
	"weak"
)

// registry deduplicates vaults by descriptor. Entries hold weak
// pointers, so the registry never extends a vault's lifetime: once the
// last client reference drops, the vault is collectable and a cleanup
// removes the stale entry. All derived state is reconstructible from the
// descriptor, so recreation after collection is harmless.
type registry struct {
	mu     sync.Mutex
	vaults map[string]weak.Pointer[Vault]
}

var defaultRegistry = &registry{vaults: make(map[string]weak.Pointer[Vault])}

// obtain returns the live vault for descriptor, constructing one on a
// miss. Lookup and insert happen under one lock acquisition, so a
// construction race cannot leave two callers with different vaults for
// the same descriptor.
func (r *registry) obtain(descriptor string, construct func() *Vault) *Vault {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wp, ok := r.vaults[descriptor]; ok {
		if v := wp.Value(); v != nil {
			return v
		}
	}

	v := construct()
	r.vaults[descriptor] = weak.Make(v)
	runtime.AddCleanup(v, r.evict, descriptor)
	return v
}

// evict drops the registry entry for a collected vault. A live entry is
// left alone: the descriptor may have been re-registered with a new
// vault between collection and cleanup.
func (r *registry) evict(descriptor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wp, ok := r.vaults[descriptor]; ok && wp.Value() == nil {
		delete(r.vaults, descriptor)
	}
}

var (
	platformMu      sync.Mutex
	defaultPlatform Platform
)

// currentPlatform returns the process-wide platform backend, creating
// the OS keychain backend on first use.
func currentPlatform() Platform {
	platformMu.Lock()
	defer platformMu.Unlock()
	if defaultPlatform == nil {
		defaultPlatform = NewKeychainPlatform()
	}
	return defaultPlatform
}

// SetDefaultPlatform rebinds the platform backend used by vaults
// obtained after this call. Already-obtained vaults keep the backend
// they were constructed with.
func SetDefaultPlatform(p Platform) {
	platformMu.Lock()
	defer platformMu.Unlock()
	defaultPlatform = p
}

// Obtain returns the canonical private vault for identifier and flavor.
// Calls with equal identifier and flavor return the same instance for
// as long as a reference to it is held anywhere in the process.
func Obtain(identifier string, flavor Flavor) (*Vault, error) {
	return obtain(identifier, Private(), flavor)
}

// ObtainShared is Obtain for a vault shared across the named access
// group.
func ObtainShared(identifier, group string, flavor Flavor) (*Vault, error) {
	if group == "" {
		return nil, ErrEmptyGroup
	}
	return obtain(identifier, SharedGroup(group), flavor)
}

func obtain(identifier string, scope Scope, flavor Flavor) (*Vault, error) {
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}
	descriptor := serviceDescriptor(identifier, scope, flavor)
	platform := currentPlatform()
	v := defaultRegistry.obtain(descriptor, func() *Vault {
		return newVault(identifier, scope, flavor, descriptor, platform)
	})
	return v, nil
}
