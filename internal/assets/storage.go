package assets

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Store writes uploaded binaries (item images, company logos) to local disk.
// Asset writes have an independent lifecycle from the records that reference
// them: a failed upload never rolls back the owning record.
type Store struct {
	baseDir string
}

// NewStore creates an asset store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create asset directory")
	}
	return &Store{baseDir: baseDir}, nil
}

// Save writes the binary under a generated name in the given subdirectory and
// returns the relative path to store on the record.
func (s *Store) Save(subdir, originalName string, r io.Reader) (string, error) {
	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create asset subdirectory")
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create asset file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "failed to write asset file")
	}

	return filepath.Join(subdir, name), nil
}

// Remove deletes an asset by its relative path. Missing files are not an
// error: the record is the source of truth, the file is best-effort.
func (s *Store) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, relPath))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove asset file")
	}
	return nil
}
