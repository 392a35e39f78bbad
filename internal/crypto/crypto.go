package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 32     // Salt size in bytes
	KeySize      = 32     // AES-256 key size
	NonceSize    = 12     // GCM nonce size
	TagSize      = 16     // GCM authentication tag size
	BoxKeySize   = 32     // X25519 key size
	DefaultIters = 210000 // Default PBKDF2 iterations (OWASP minimum)
)

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
)

// KDF derives credentials from passphrases.
type KDF struct {
	Salt       []byte
	Iterations int
}

// NewKDF creates a KDF with a fresh random salt.
func NewKDF() (*KDF, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &KDF{Salt: salt, Iterations: DefaultIters}, nil
}

// DeriveKey derives a credential from a passphrase.
func (k *KDF) DeriveKey(passphrase []byte) []byte {
	return pbkdf2.Key(passphrase, k.Salt, k.Iterations, KeySize, sha256.New)
}

// Seal encrypts plaintext with AES-256-GCM under key, prepending the
// random nonce to the ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts and authenticates a Seal ciphertext. A wrong key yields
// ErrAuthFailed.
func Open(key, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, ciphertext[:NonceSize], ciphertext[NonceSize:], nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// GenerateBoxKeyPair creates an X25519 keypair for sealed-box item
// encryption.
func GenerateBoxKeyPair() (publicKey, privateKey *[BoxKeySize]byte, err error) {
	publicKey, privateKey, err = box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return publicKey, privateKey, nil
}

// SealAnonymous encrypts plaintext to publicKey. No credential is
// needed; only the holder of the private key can open it.
func SealAnonymous(publicKey *[BoxKeySize]byte, plaintext []byte) ([]byte, error) {
	sealed, err := box.SealAnonymous(nil, plaintext, publicKey, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to seal payload: %w", err)
	}
	return sealed, nil
}

// OpenAnonymous decrypts a SealAnonymous ciphertext with the matching
// private key.
func OpenAnonymous(publicKey, privateKey *[BoxKeySize]byte, sealed []byte) ([]byte, error) {
	plaintext, ok := box.OpenAnonymous(nil, sealed, publicKey, privateKey)
	if !ok {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// ClearBytes securely clears a byte slice.
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte
// slices.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
