package filestore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/live-labs/keyguard/internal/crypto"
	"github.com/live-labs/keyguard/pkg/vault"
)

// Bucket names
var (
	configBucket = []byte("config") // KDF params, keypair, timestamps
	itemsBucket  = []byte("items")  // protected records, nested per service
	plainBucket  = []byte("plain")  // plaintext records, nested per service
)

// Config keys
var (
	configVersion    = []byte("version")
	configCreated    = []byte("created")
	configModified   = []byte("modified")
	configSalt       = []byte("salt")
	configIters      = []byte("iterations")
	configPublicKey  = []byte("public_key")
	configPrivateKey = []byte("private_key") // sealed under the passphrase credential
)

var (
	// ErrCancelled should be returned by an Authenticator when the user
	// aborts the passphrase prompt.
	ErrCancelled = errors.New("authentication cancelled")

	// ErrPassphraseRequired is returned by Open when a new store must be
	// initialized but no Authenticator was supplied.
	ErrPassphraseRequired = errors.New("passphrase required to initialize store")
)

// Authenticator supplies the store passphrase when a read needs user
// presence. reason is the display-only prompt from the query, if any.
type Authenticator func(reason string) ([]byte, error)

// record is the on-disk item layout.
type record struct {
	Payload []byte    `cbor:"payload"`
	Access  string    `cbor:"access"`
	Created time.Time `cbor:"created"`
}

// Store is a vault.Platform backed by a BBolt database file.
type Store struct {
	db   *bolt.DB
	auth Authenticator

	kdf        crypto.KDF
	publicKey  [crypto.BoxKeySize]byte
	sealedPriv []byte
}

// Open opens or creates a store at path. Creating a new store derives
// the sealing credential from a passphrase obtained through auth; a nil
// auth is fine for existing stores but fails creation with
// ErrPassphraseRequired.
func Open(path string, auth Authenticator) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, auth: auth}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{configBucket, itemsBucket, plainBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(configBucket)
		if config.Get(configVersion) != nil {
			return s.load(config)
		}
		return s.create(config)
	})
}

// load reads the KDF parameters and keypair of an existing store.
func (s *Store) load(config *bolt.Bucket) error {
	salt := config.Get(configSalt)
	iters := config.Get(configIters)
	pub := config.Get(configPublicKey)
	priv := config.Get(configPrivateKey)
	if salt == nil || iters == nil || len(pub) != crypto.BoxKeySize || priv == nil {
		return errors.New("store config is corrupt")
	}

	s.kdf = crypto.KDF{
		Salt:       append([]byte(nil), salt...),
		Iterations: int(binary.BigEndian.Uint32(iters)),
	}
	copy(s.publicKey[:], pub)
	s.sealedPriv = append([]byte(nil), priv...)
	return nil
}

// create initializes a fresh store: new KDF salt, new sealed-box
// keypair, private key sealed under the passphrase credential.
func (s *Store) create(config *bolt.Bucket) error {
	if s.auth == nil {
		return ErrPassphraseRequired
	}
	passphrase, err := s.auth("choose a passphrase for the new vault store")
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	defer crypto.ClearBytes(passphrase)

	kdf, err := crypto.NewKDF()
	if err != nil {
		return err
	}
	cred := kdf.DeriveKey(passphrase)
	defer crypto.ClearBytes(cred)

	publicKey, privateKey, err := crypto.GenerateBoxKeyPair()
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(privateKey[:])

	sealedPriv, err := crypto.Seal(cred, privateKey[:])
	if err != nil {
		return err
	}

	iters := make([]byte, 4)
	binary.BigEndian.PutUint32(iters, uint32(kdf.Iterations))
	now, _ := time.Now().MarshalBinary()

	puts := [][2][]byte{
		{configVersion, []byte("1")},
		{configSalt, kdf.Salt},
		{configIters, iters},
		{configPublicKey, publicKey[:]},
		{configPrivateKey, sealedPriv},
		{configCreated, now},
		{configModified, now},
	}
	for _, kv := range puts {
		if err := config.Put(kv[0], kv[1]); err != nil {
			return err
		}
	}

	s.kdf = *kdf
	s.publicKey = *publicKey
	s.sealedPriv = sealedPriv
	return nil
}

// bucketName selects the protected or plain item tree for a query.
func bucketName(q vault.Query) []byte {
	if q.HardwareBacked {
		return itemsBucket
	}
	return plainBucket
}

// Set stores data under key. Protected payloads are sealed to the store
// public key, so no credential is needed on the write path.
func (s *Store) Set(q vault.Query, key string, data []byte) vault.Status {
	payload := data
	if q.HardwareBacked {
		sealed, err := crypto.SealAnonymous(&s.publicKey, data)
		if err != nil {
			return vault.StatusAccessDenied
		}
		payload = sealed
	}

	enc, err := cbor.Marshal(record{
		Payload: payload,
		Access:  string(q.Access),
		Created: time.Now(),
	})
	if err != nil {
		return vault.StatusAccessDenied
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		services, err := tx.Bucket(bucketName(q)).CreateBucketIfNotExists([]byte(q.Service))
		if err != nil {
			return err
		}
		if err := services.Put([]byte(key), enc); err != nil {
			return err
		}
		return s.touch(tx)
	})
	if err != nil {
		return vault.StatusAccessDenied
	}
	return vault.StatusSuccess
}

// Get returns the payload stored under key. Protected payloads require
// the private key, unlocked through the query's cached credential or a
// fresh authentication.
func (s *Store) Get(q vault.Query, key string) ([]byte, vault.Status) {
	rec, st := s.read(q, key)
	if st != vault.StatusSuccess {
		return nil, st
	}
	if !q.HardwareBacked {
		return rec.Payload, vault.StatusSuccess
	}

	privateKey, st := s.privateKey(q)
	if st != vault.StatusSuccess {
		return nil, st
	}
	defer crypto.ClearBytes(privateKey[:])

	data, err := crypto.OpenAnonymous(&s.publicKey, privateKey, rec.Payload)
	if err != nil {
		return nil, vault.StatusAccessDenied
	}
	return data, vault.StatusSuccess
}

// Remove deletes the item under key.
func (s *Store) Remove(q vault.Query, key string) vault.Status {
	found := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		services := tx.Bucket(bucketName(q)).Bucket([]byte(q.Service))
		if services == nil || services.Get([]byte(key)) == nil {
			return nil
		}
		found = true
		if err := services.Delete([]byte(key)); err != nil {
			return err
		}
		return s.touch(tx)
	})
	if err != nil {
		return vault.StatusAccessDenied
	}
	if !found {
		return vault.StatusNotFound
	}
	return vault.StatusSuccess
}

// Contains reports item existence without unsealing anything. Protected
// items sit behind the passphrase, so their presence is reported as
// interaction-not-allowed rather than success.
func (s *Store) Contains(q vault.Query, key string) vault.Status {
	_, st := s.read(q, key)
	if st != vault.StatusSuccess {
		return st
	}
	if q.HardwareBacked {
		return vault.StatusInteractionNotAllowed
	}
	return vault.StatusSuccess
}

// read loads and decodes a raw record.
func (s *Store) read(q vault.Query, key string) (record, vault.Status) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		services := tx.Bucket(bucketName(q)).Bucket([]byte(q.Service))
		if services == nil {
			return nil
		}
		if v := services.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return record{}, vault.StatusAccessDenied
	}
	if raw == nil {
		return record{}, vault.StatusNotFound
	}

	var rec record
	if err := cbor.Unmarshal(raw, &rec); err != nil {
		return record{}, vault.StatusAccessDenied
	}
	return rec, vault.StatusSuccess
}

// privateKey unseals the store private key. Credential order: the
// query's authentication context first, then a fresh prompt through the
// Authenticator. A successful prompt caches the credential in the
// context, so later queries carrying the same context skip it.
func (s *Store) privateKey(q vault.Query) (*[crypto.BoxKeySize]byte, vault.Status) {
	if q.Context != nil {
		if cred := q.Context.CachedCredential(); cred != nil {
			privateKey, err := s.unseal(cred)
			crypto.ClearBytes(cred)
			if err == nil {
				return privateKey, vault.StatusSuccess
			}
			// Stale credential (passphrase changed): fall through to a
			// fresh prompt.
		}
	}

	if s.auth == nil {
		return nil, vault.StatusInteractionNotAllowed
	}

	reason := q.Prompt
	if reason == "" {
		reason = "unlock the vault store"
	}
	passphrase, err := s.auth(reason)
	if err != nil {
		return nil, vault.StatusAuthFailed
	}
	defer crypto.ClearBytes(passphrase)

	cred := s.kdf.DeriveKey(passphrase)
	defer crypto.ClearBytes(cred)

	privateKey, err := s.unseal(cred)
	if err != nil {
		return nil, vault.StatusAuthFailed
	}
	if q.Context != nil {
		q.Context.CacheCredential(cred)
	}
	return privateKey, vault.StatusSuccess
}

// unseal decrypts the stored private key with a derived credential.
func (s *Store) unseal(cred []byte) (*[crypto.BoxKeySize]byte, error) {
	raw, err := crypto.Open(cred, s.sealedPriv)
	if err != nil {
		return nil, err
	}
	if len(raw) != crypto.BoxKeySize {
		crypto.ClearBytes(raw)
		return nil, crypto.ErrInvalidCiphertext
	}
	privateKey := new([crypto.BoxKeySize]byte)
	copy(privateKey[:], raw)
	crypto.ClearBytes(raw)
	return privateKey, nil
}

// touch updates the store modification stamp inside an open write tx.
func (s *Store) touch(tx *bolt.Tx) error {
	now, _ := time.Now().MarshalBinary()
	return tx.Bucket(configBucket).Put(configModified, now)
}
