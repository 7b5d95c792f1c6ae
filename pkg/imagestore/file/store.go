// Package file implements the imagestore interface on a local directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/orchardai/visionlab/pkg/imagestore"
)

// Store writes images into a directory, creating it on first use.
type Store struct {
	dir string
}

var _ imagestore.Store = (*Store)(nil)

// New creates a file store rooted at dir.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("file store: directory is required")
	}
	return &Store{dir: dir}, nil
}

// Put writes data to <dir>/<name> and returns the resulting path.
func (s *Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", &imagestore.StoreError{Op: "Put", Backend: "file", Err: fmt.Errorf("image name is required")}
	}
	// Names are generated by the caller, but reject traversal outright.
	if name != filepath.Base(name) {
		return "", &imagestore.StoreError{Op: "Put", Backend: "file", Name: name, Err: fmt.Errorf("image name must not contain path separators")}
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", &imagestore.StoreError{Op: "Put", Backend: "file", Name: name, Err: err}
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &imagestore.StoreError{Op: "Put", Backend: "file", Name: name, Err: err}
	}
	return path, nil
}
