package invoice

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const documentBucket = "documents"

// BoltStore implements Storage on a single bbolt file. Documents are stored
// as JSON values keyed by their blob key.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltStore instance
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(documentBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save stores a document in the database
func (b *BoltStore) Save(key string, doc StoredDocument) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshaling document: %w", err)
		}
		return bucket.Put([]byte(key), data)
	})
}

// Get retrieves a document by key
func (b *BoltStore) Get(key string) (StoredDocument, error) {
	var doc StoredDocument
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		data := bucket.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("document not found: %s", key)
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return StoredDocument{}, err
	}
	return doc, nil
}

// Delete removes a document from the database
func (b *BoltStore) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(documentBucket))
		return bucket.Delete([]byte(key))
	})
}

// Close closes the database file
func (b *BoltStore) Close() error {
	return b.db.Close()
}
