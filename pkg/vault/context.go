package vault

import (
	"sync"

	"github.com/google/uuid"
)

// AuthContext is an opaque session handle proving recent user presence.
// A vault attaches its current context to effective queries in
// single-prompt mode; the platform caches the credential it unlocked
// inside the context, so reads reusing the same context skip the prompt.
// Contexts are replaced, never mutated: RequirePromptOnNextAccess swaps
// in a fresh one and the old credential dies with the old handle.
type AuthContext struct {
	handle string

	mu   sync.Mutex
	cred []byte
}

// NewAuthContext creates a fresh, unauthenticated session. Vaults
// create their own contexts; this is exported for platform
// implementations and their tests.
func NewAuthContext() *AuthContext {
	return &AuthContext{handle: uuid.NewString()}
}

// Handle returns the unique identity of this session.
func (c *AuthContext) Handle() string {
	return c.handle
}

// CacheCredential stores the credential unlocked through this context.
// Platform backends call this after a successful authentication so
// later queries carrying the same context skip the prompt.
func (c *AuthContext) CacheCredential(cred []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = append([]byte(nil), cred...)
}

// CachedCredential returns the credential unlocked through this
// context, or nil if no authentication has succeeded yet.
func (c *AuthContext) CachedCredential() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cred == nil {
		return nil
	}
	return append([]byte(nil), c.cred...)
}
