// Package filestore keeps uploaded files on the local disk.
package filestore

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/news"
)

// NewsDir is the sub directory of the upload root holding news images.
const NewsDir = "berita"

type LocalStore struct {
	root string
	dir  string
}

var _ news.ImageStore = (*LocalStore)(nil)

// NewLocalStore stores files under root/dir, creating the directory if needed.
func NewLocalStore(root, dir string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload directory")
	}
	return &LocalStore{root: root, dir: dir}, nil
}

// Save writes the image under a random name that keeps the original extension
// and returns its slash separated path relative to the upload root.
func (s *LocalStore) Save(_ context.Context, img news.Image) (string, error) {
	if err := news.CheckImage(img); err != nil {
		return "", err
	}
	name := uuid.New().String() + img.Ext()
	rel := path.Join(s.dir, name)

	f, err := os.OpenFile(s.abs(rel), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, img.Content); err != nil {
		_ = f.Close()
		_ = os.Remove(s.abs(rel))
		return "", errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing file")
	}
	return rel, nil
}

// Delete removes a previously saved file. Missing files are ignored.
func (s *LocalStore) Delete(_ context.Context, rel string) error {
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || !strings.HasPrefix(clean, s.dir+"/") {
		return errors.Errorf("refusing to delete %q outside of %s", rel, s.dir)
	}
	if err := os.Remove(s.abs(clean)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}

func (s *LocalStore) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}
