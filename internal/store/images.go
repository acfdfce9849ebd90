package store

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

const imageExt = ".png"

// ImageStore keeps one image per item, named <id>.png
type ImageStore struct {
	fs  afero.Fs
	dir string
}

// NewImageStore creates dir if needed and returns a store rooted there
func NewImageStore(fs afero.Fs, dir string) (*ImageStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory %s: %w", dir, err)
	}
	return &ImageStore{fs: fs, dir: dir}, nil
}

// Path returns the file path for id
func (s *ImageStore) Path(id int) string {
	return filepath.Join(s.dir, strconv.Itoa(id)+imageExt)
}

// Exists reports whether an image for id is present. Content is not inspected.
func (s *ImageStore) Exists(id int) (bool, error) {
	return afero.Exists(s.fs, s.Path(id))
}

// Save writes data for id, replacing any previous image. The payload goes to a
// temporary file first so a failed write never truncates the old image.
func (s *ImageStore) Save(id int, data []byte) error {
	path := s.Path(id)
	tmp := path + ".part"

	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to move image into %s: %w", path, err)
	}
	return nil
}

// Load returns the stored image for id
func (s *ImageStore) Load(id int) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read image %d: %w", id, err)
	}
	return data, nil
}
