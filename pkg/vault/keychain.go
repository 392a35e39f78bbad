package vault

import (
	"encoding/base64"
	"errors"

	"github.com/zalando/go-keyring"
)

// keychainPlatform stores items in the operating system keychain via
// go-keyring. The descriptor becomes the keychain service, the item key
// the account. Non-hardware queries (the reachability sibling) use a
// suffixed service so probe canaries never collide with protected
// items.
//
// go-keyring cannot observe a user dismissing an OS-level prompt, so
// this backend never reports StatusAuthFailed; unrecognized errors
// surface as StatusAccessDenied.
type keychainPlatform struct{}

// NewKeychainPlatform returns the OS keychain backend. It is the
// default platform for obtained vaults.
func NewKeychainPlatform() Platform {
	return keychainPlatform{}
}

func (keychainPlatform) service(q Query) string {
	if !q.HardwareBacked {
		return q.Service + "#plain"
	}
	return q.Service
}

func (p keychainPlatform) Set(q Query, key string, data []byte) Status {
	// Payloads are opaque binary; the keychain secret field is a
	// string, so encode.
	encoded := base64.StdEncoding.EncodeToString(data)
	if err := keyring.Set(p.service(q), key, encoded); err != nil {
		return StatusAccessDenied
	}
	return StatusSuccess
}

func (p keychainPlatform) Get(q Query, key string) ([]byte, Status) {
	encoded, err := keyring.Get(p.service(q), key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, StatusNotFound
	}
	if err != nil {
		return nil, StatusAccessDenied
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, StatusAccessDenied
	}
	return data, StatusSuccess
}

func (p keychainPlatform) Remove(q Query, key string) Status {
	err := keyring.Delete(p.service(q), key)
	if errors.Is(err, keyring.ErrNotFound) {
		return StatusNotFound
	}
	if err != nil {
		return StatusAccessDenied
	}
	return StatusSuccess
}

func (p keychainPlatform) Contains(q Query, key string) Status {
	_, err := keyring.Get(p.service(q), key)
	if errors.Is(err, keyring.ErrNotFound) {
		return StatusNotFound
	}
	if err != nil {
		return StatusAccessDenied
	}
	return StatusSuccess
}
