package filestore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DiskStore keeps proofs on the local filesystem. Intended for
// development; deployments use the S3 store.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	name := uuid.NewString() + extensionFor(contentType)
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
