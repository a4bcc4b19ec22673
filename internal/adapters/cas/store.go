// Package cas implements content addressable storage for generated bundles.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.BundleStore using a file-per-template strategy.
// Code is stored under its digest, so identical bundles share one file.
type Store struct {
	dir string
}

// NewStore creates a new BundleStore backed by the directory at the given path.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, zerr.Wrap(domain.ErrStoreCreateFailed, "store directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreCreateFailed, err.Error()), "dir", dir)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the absolute store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get retrieves the bundle info for a given template file.
func (s *Store) Get(filename string) (*domain.BundleInfo, error) {
	path := s.infoPath(filename)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreReadFailed, err.Error()), "path", path)
	}

	var info domain.BundleInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreUnmarshalFailed, err.Error()), "path", path)
	}
	return &info, nil
}

// Put stores the code under its digest and records info for the template.
// The returned info carries the absolute code path.
func (s *Store) Put(info domain.BundleInfo, code []byte) (*domain.BundleInfo, error) {
	if info.Digest == "" {
		sum := sha256.Sum256(code)
		info.Digest = hex.EncodeToString(sum[:])
	}
	info.Size = len(code)
	info.CodePath = filepath.Join(s.dir, info.Digest+".js")

	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreCreateFailed, err.Error()), "dir", s.dir)
	}

	if _, err := os.Stat(info.CodePath); errors.Is(err, fs.ErrNotExist) {
		if err := writeAtomic(info.CodePath, code); err != nil {
			return nil, err
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(domain.ErrStoreMarshalFailed, err.Error())
	}
	if err := writeAtomic(s.infoPath(info.Filename), data); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *Store) infoPath(filename string) string {
	hash := sha256.Sum256([]byte(filename))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}

// writeAtomic writes data to a sibling temp file and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", path)
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", path)
	}
	return nil
}
