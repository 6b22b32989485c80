package storage

import (
	"context"
	"io"
	"path"

	"github.com/spf13/afero"
)

// AferoStore is a filesystem-backed Store. With afero's in-memory
// filesystem it doubles as the test implementation.
type AferoStore struct {
	fs      afero.Fs
	baseURL string
}

// NewAferoStore creates a store over the given filesystem. Saved objects
// report URLs under baseURL.
func NewAferoStore(fs afero.Fs, baseURL string) *AferoStore {
	return &AferoStore{fs: fs, baseURL: baseURL}
}

// Save writes the attachment to the filesystem and returns its URL.
func (s *AferoStore) Save(ctx context.Context, key, contentType string, reader io.Reader) (string, error) {
	f, err := s.fs.Create(key)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", err
	}
	return s.baseURL + "/" + path.Clean(key), nil
}
