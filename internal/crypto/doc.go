// Package crypto provides the cryptographic primitives for the
// encrypted file store.
//
// Item payloads are sealed with an anonymous NaCl box to the store's
// X25519 public key, so writes need no credential. The matching private
// key is kept AES-256-GCM-encrypted under a passphrase-derived key, so
// reads require user presence.
//
// Key derivation uses PBKDF2-HMAC-SHA256 with a 32-byte random salt and
// 210,000 iterations (OWASP minimum recommendation).
//
// Zero sensitive material with ClearBytes when done.
package crypto
