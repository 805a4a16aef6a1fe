// Package boltstore provides a bbolt-backed credential store.
package boltstore

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/veridocs/go-kyc-console/credentials"
	"github.com/veridocs/go-kyc-console/users"
)

const bucketName = "session"

// Fixed storage keys for the persisted tuple.
const (
	keyVersion      = "version"
	keyUser         = "user"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Store implements credentials.Store backed by a bbolt database file.
type Store struct {
	db *bbolt.DB
}

var _ credentials.Store = (*Store)(nil)

// New returns a Store backed by the given bbolt database.
func New(db *bbolt.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) a bbolt database at the given path and returns a
// Store over it. The file is created with owner-only permissions since it
// holds bearer credentials.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[boltstore.Open] bbolt.Open")
	}
	return New(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the whole tuple in one transaction.
func (s *Store) Save(record credentials.Record) error {
	userBlob, err := json.Marshal(record.User)
	if err != nil {
		return errors.Wrap(err, "[Store.Save] marshal user")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		if err := b.Put([]byte(keyVersion), []byte(strconv.Itoa(credentials.RecordVersion))); err != nil {
			return err
		}
		if err := b.Put([]byte(keyUser), userBlob); err != nil {
			return err
		}
		if err := b.Put([]byte(keyAccessToken), []byte(record.AccessToken)); err != nil {
			return err
		}
		return b.Put([]byte(keyRefreshToken), []byte(record.RefreshToken))
	})
}

// Load returns the last-saved tuple. A missing bucket, an unknown schema
// version, or a corrupt user blob all load as an empty record.
func (s *Store) Load() (credentials.Record, error) {
	var record credentials.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		version, err := strconv.Atoi(string(b.Get([]byte(keyVersion))))
		if err != nil || version != credentials.RecordVersion {
			return nil
		}
		record.Version = version
		if blob := b.Get([]byte(keyUser)); len(blob) > 0 && string(blob) != "null" {
			var u users.User
			if err := json.Unmarshal(blob, &u); err != nil {
				// Corrupt blob: treat the whole record as empty.
				record = credentials.Record{}
				return nil
			}
			record.User = &u
		}
		record.AccessToken = string(b.Get([]byte(keyAccessToken)))
		record.RefreshToken = string(b.Get([]byte(keyRefreshToken)))
		return nil
	})
	if err != nil {
		return credentials.Record{}, errors.Wrap(err, "[Store.Load] db.View")
	}
	return record, nil
}

// Clear removes every entry. Idempotent: clearing an empty store succeeds.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(bucketName)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(bucketName))
	})
}
