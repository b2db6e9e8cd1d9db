package objectstore

import (
	"context"
	"os"
	"path/filepath"
)

// ObjectStore persists audit artifacts (per-source JSON snapshots). It's
// abstract so deployments can keep snapshots on local disk or in S3.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (location string, err error)
}

// DiskStore writes objects under a local directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) *DiskStore {
	if dir == "" {
		dir = "data"
	}
	return &DiskStore{dir: dir}
}

func (s *DiskStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var _ ObjectStore = (*DiskStore)(nil)
