package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/flashaov/pkg/errors"
)

// FileStore keeps snapshots as files in a directory, one JSON envelope per
// key with an optional expiry.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

type entry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Get reads a snapshot. Corrupt or expired entries are removed and reported
// as a miss.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := s.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "read %s", key)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes a snapshot, replacing any previous value.
func (s *FileStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := entry{Key: key, Data: data}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode %s", key)
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", key)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", key)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStore, err, "write %s", key)
	}
	return nil
}

// Delete removes a snapshot. Deleting a missing key is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(errors.ErrCodeStore, err, "delete %s", key)
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Backend returns "file".
func (s *FileStore) Backend() string { return "file" }

// path spreads entries over subdirectories named by the first two hash chars.
func (s *FileStore) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

var _ Store = (*FileStore)(nil)
