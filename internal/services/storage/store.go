package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageStore persists uploaded originals as JPEG files named by image id.
type ImageStore struct {
	dir string
}

// NewImageStore creates a store rooted at dir. The directory is created
// lazily on first save.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Save writes data to <dir>/<imageID>.jpg and returns the file path.
func (s *ImageStore) Save(imageID string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := s.Path(imageID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image %s: %w", imageID, err)
	}

	return path, nil
}

// Path returns the on-disk location for an image id.
func (s *ImageStore) Path(imageID string) string {
	return filepath.Join(s.dir, imageID+".jpg")
}

// Read loads a stored image by id.
func (s *ImageStore) Read(imageID string) ([]byte, error) {
	return os.ReadFile(s.Path(imageID))
}
