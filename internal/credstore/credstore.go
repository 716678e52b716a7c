// Package credstore persists signed-in identities in a local bbolt
// file so role decisions survive process restarts without re-querying
// the database. Records are written by the auth service at sign-in and
// removed by explicit sign-out.
package credstore

import (
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"proposaldesk-backend/internal/crypto"
	"proposaldesk-backend/internal/models"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var identityBucket = []byte("identities")

// ErrNotFound is returned when no identity is cached for a user.
var ErrNotFound = errors.New("identity not found in credential store")

// Store is a file-backed identity cache. Safe for concurrent use;
// bbolt serializes writers internally.
type Store struct {
	db   *bolt.DB
	aead cipher.AEAD // nil means records are stored in plaintext
}

// Open creates or opens the store at path. When aead is non-nil,
// records are encrypted at rest.
func Open(path string, aead cipher.AEAD) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create credential store directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(identityBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}
	return &Store{db: db, aead: aead}, nil
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save caches an identity, overwriting any previous record for the user.
func (s *Store) Save(identity models.Identity) error {
	plain, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	record := plain
	if s.aead != nil {
		record, err = crypto.Encrypt(s.aead, plain)
		if err != nil {
			return fmt.Errorf("failed to encrypt identity: %w", err)
		}
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(identityBucket).Put([]byte(identity.UserID.String()), record)
	})
}

// Load returns the cached identity for a user, or ErrNotFound.
func (s *Store) Load(userID uuid.UUID) (models.Identity, error) {
	var record []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(identityBucket).Get([]byte(userID.String()))
		if v == nil {
			return ErrNotFound
		}
		record = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return models.Identity{}, err
	}

	plain := record
	if s.aead != nil {
		plain, err = crypto.Decrypt(s.aead, record)
		if err != nil {
			return models.Identity{}, fmt.Errorf("failed to decrypt identity: %w", err)
		}
	}

	var identity models.Identity
	if err := json.Unmarshal(plain, &identity); err != nil {
		return models.Identity{}, fmt.Errorf("failed to parse cached identity: %w", err)
	}
	return identity, nil
}

// Clear removes the cached identity for a user. Clearing an absent
// record is not an error; sign-out must be idempotent.
func (s *Store) Clear(userID uuid.UUID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(identityBucket).Delete([]byte(userID.String()))
	})
}
