package invoice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StoredDocument is the uploaded source file, kept only so the editor can
// show the original next to the extracted rows. It is deleted whenever the
// session is reset or a new document replaces it.
type StoredDocument struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Storage defines the blob store for uploaded source documents.
type Storage interface {
	// Save stores a document under the given key
	Save(key string, doc StoredDocument) error

	// Get retrieves a document by key
	Get(key string) (StoredDocument, error)

	// Delete removes a document
	Delete(key string) error

	// Close releases store resources
	Close() error
}

// LocalStorage implements Storage on the local filesystem. The document
// bytes live in <key>, the filename and content type in a <key>.json sidecar.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

type localMeta struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// Save stores a document on the local filesystem
func (l *LocalStorage) Save(key string, doc StoredDocument) error {
	path := filepath.Join(l.basePath, key)
	if err := os.WriteFile(path, doc.Data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	meta, err := json.Marshal(localMeta{Filename: doc.Filename, ContentType: doc.ContentType})
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(path+".json", meta, 0644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// Get retrieves a document from the local filesystem
func (l *LocalStorage) Get(key string) (StoredDocument, error) {
	path := filepath.Join(l.basePath, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return StoredDocument{}, fmt.Errorf("reading file: %w", err)
	}

	var meta localMeta
	raw, err := os.ReadFile(path + ".json")
	if err != nil {
		return StoredDocument{}, fmt.Errorf("reading metadata: %w", err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return StoredDocument{}, fmt.Errorf("unmarshaling metadata: %w", err)
	}

	return StoredDocument{
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Data:        data,
	}, nil
}

// Delete removes a document from the local filesystem
func (l *LocalStorage) Delete(key string) error {
	path := filepath.Join(l.basePath, key)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	if err := os.Remove(path + ".json"); err != nil {
		return fmt.Errorf("deleting metadata: %w", err)
	}
	return nil
}

// Close is a no-op for filesystem storage
func (l *LocalStorage) Close() error {
	return nil
}
