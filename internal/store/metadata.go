package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"geitems/internal/item"

	"github.com/spf13/afero"
)

const metadataExt = ".json"

// ErrExists is returned by Create when a record file is already present
var ErrExists = errors.New("record already exists")

// MetadataStore keeps one pretty-printed JSON file per item, named <id>.json
type MetadataStore struct {
	fs  afero.Fs
	dir string
}

// NewMetadataStore creates dir if needed and returns a store rooted there
func NewMetadataStore(fs afero.Fs, dir string) (*MetadataStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create items directory %s: %w", dir, err)
	}
	return &MetadataStore{fs: fs, dir: dir}, nil
}

// Path returns the file path for id
func (s *MetadataStore) Path(id int) string {
	return filepath.Join(s.dir, strconv.Itoa(id)+metadataExt)
}

// ExistingIDs lists the identifiers that already have a record file.
// Files whose stem is not an integer are ignored.
func (s *MetadataStore) ExistingIDs() (map[int]struct{}, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read items directory %s: %w", s.dir, err)
	}

	ids := make(map[int]struct{}, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || filepath.Ext(name) != metadataExt {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(name, metadataExt))
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Create writes r to a new file. It never replaces an existing record, and a
// failed write leaves nothing behind that ExistingIDs would count.
func (s *MetadataStore) Create(r item.Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record %d: %w", r.ID, err)
	}

	path := s.Path(r.ID)
	if exists, err := afero.Exists(s.fs, path); err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	} else if exists {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}

	tmp := path + ".part"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("failed to move record into %s: %w", path, err)
	}
	return nil
}

// Get reads the record stored for id
func (s *MetadataStore) Get(id int) (item.Record, error) {
	var r item.Record
	data, err := afero.ReadFile(s.fs, s.Path(id))
	if err != nil {
		return r, fmt.Errorf("failed to read record %d: %w", id, err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse record %d: %w", id, err)
	}
	return r, nil
}
