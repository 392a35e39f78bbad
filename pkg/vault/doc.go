// Package vault provides an identity-addressed key-value store whose
// reads are gated on user presence by the underlying secure-storage
// platform.
//
// A vault is addressed by an identifier plus an access-control flavor:
//   - SinglePrompt: one successful authentication unlocks subsequent
//     reads until RequirePromptOnNextAccess is called
//   - AlwaysPrompt: every read demands fresh authentication
//
// Vaults are deduplicated process-wide: Obtain returns the same instance
// for the same (identifier, scope, flavor) triple for as long as anyone
// holds a reference to it. All operations on a vault are serialized
// through its own lock, so at most one platform call per vault is in
// flight at any time.
//
// Item payloads are opaque bytes handed to the platform verbatim. The
// default platform is the operating system keychain; SetDefaultPlatform
// rebinds subsequently obtained vaults to a different backend.
package vault
