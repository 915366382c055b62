package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// ImageStore keeps exported images so an external viewer can open them.
type ImageStore interface {
	Put(key string, r io.Reader) (string, error) // returns the file path
	Get(key string) (io.ReadCloser, error)
}

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = filepath.Join(os.TempDir(), "slidequiz")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

// Base returns the store's root directory.
func (s *FSStore) Base() string { return s.base }

func (s *FSStore) resolve(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	// rooting the key first keeps ".." from climbing out of base
	return filepath.Join(s.base, filepath.Clean("/"+key)), nil
}

func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	dst, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}
