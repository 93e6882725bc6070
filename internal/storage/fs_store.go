package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// FSStore keeps blobs on the local filesystem. Dev and test use only;
// TemporaryURL returns a file:// URL instead of a signed one.
type FSStore struct {
	base string
}

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data/videos"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if key == "" {
		return "", errors.New("empty blob key")
	}
	dst := filepath.Join(s.base, filepath.Clean(key))
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
	return key, nil
}

func (s *FSStore) Delete(_ context.Context, reference string) error {
	return os.Remove(filepath.Join(s.base, filepath.Clean(reference)))
}

func (s *FSStore) TemporaryURL(_ context.Context, reference string, _ time.Duration) (string, error) {
	abs, err := filepath.Abs(filepath.Join(s.base, filepath.Clean(reference)))
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: abs}
	return u.String(), nil
}
