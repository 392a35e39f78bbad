// Package filestore provides a file-backed platform store for vaults,
// built on BBolt.
//
// Database structure uses three top-level buckets:
//   - config: KDF parameters, the sealed-box keypair, timestamps
//   - items: one nested bucket per service descriptor, protected records
//   - plain: one nested bucket per service descriptor, plaintext records
//     used by the reachability probe
//
// Protected payloads are sealed to the store's public key, so writes
// never need a credential. Reads unseal the private key with a
// passphrase-derived credential obtained through the Authenticator
// callback, or reuse the credential cached in the query's
// authentication context.
//
// BBolt provides ACID transactions, file locking, and corruption
// detection.
package filestore
