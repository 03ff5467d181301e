package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var ErrInvalidKey = errors.New("invalid blob key")

// BlobStore holds uploaded images. Put returns the public URL of the blob.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every blob below a key prefix such as
	// "properties/{id}".
	DeletePrefix(ctx context.Context, prefix string) error
	// KeyFromURL maps a URL returned by Put back to its key.
	KeyFromURL(url string) (string, bool)
}

// PropertyImageKey namespaces listing images by property id.
func PropertyImageKey(propertyID uuid.UUID) string {
	return fmt.Sprintf("%s/%s.jpg", PropertyPrefix(propertyID), ulid.Make())
}

// ProfilePhotoKey namespaces profile photos by user id.
func ProfilePhotoKey(userID uuid.UUID, name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" || base == "." {
		base = "photo"
	}
	return fmt.Sprintf("users/%s/profile/%s-%s.jpg", userID, ulid.Make(), base)
}

// FSBlobStore writes blobs below a root directory and serves them under
// baseURL (for example "https://api.example.com/media").
type FSBlobStore struct {
	root    string
	baseURL string
}

func NewFSBlobStore(root, baseURL string) (*FSBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSBlobStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory served at the media route.
func (s *FSBlobStore) Root() string { return s.root }

func (s *FSBlobStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

func (s *FSBlobStore) Delete(_ context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FSBlobStore) DeletePrefix(_ context.Context, prefix string) error {
	full, err := s.resolve(strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return err
	}
	return os.RemoveAll(full)
}

// PropertyPrefix is the key prefix holding every image of one listing.
func PropertyPrefix(propertyID uuid.UUID) string {
	return fmt.Sprintf("properties/%s", propertyID)
}

func (s *FSBlobStore) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if _, err := s.resolve(key); err != nil {
		return "", false
	}
	return key, true
}

func (s *FSBlobStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || clean != "/"+key {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
