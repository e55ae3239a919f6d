package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageStore keeps uploaded images under a root directory, addressed by
// slash-separated storage paths.
type ImageStore struct {
	root string
}

func NewImageStore(root string) (*ImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageStore{root: root}, nil
}

func (s *ImageStore) resolve(storagePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(storagePath))
	if storagePath == "" || filepath.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path %q", storagePath)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *ImageStore) Put(storagePath string, data []byte) error {
	p, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *ImageStore) Open(storagePath string) (io.ReadCloser, error) {
	p, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

// Remove deletes the image; a missing file is not an error.
func (s *ImageStore) Remove(storagePath string) error {
	p, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
