package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DirBlobStore serves the files below a local directory as objects, keyed by their slash-separated relative path.
// It stands in for S3 on offline runs.
type DirBlobStore struct {
	root string
}

func NewDirBlobStore(root string) *DirBlobStore {
	return &DirBlobStore{root: root}
}

// List walks the directory in lexical order and returns the regular files whose key starts with prefix.
func (d *DirBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimPrefix(prefix, "/")

	var keys []string
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		if key := filepath.ToSlash(rel); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, &StoreAccessError{Op: "list", Key: prefix, Kind: classifyFS(err), Err: err}
	}
	return keys, nil
}

// Open opens the file stored under key. Keys escaping the root directory are reported as not found.
func (d *DirBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreAccessError{Op: "open", Key: key, Err: err}
	}

	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != strings.TrimPrefix(key, "/") {
		return nil, &StoreAccessError{Op: "open", Key: key, Kind: ErrObjectNotFound}
	}

	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, &StoreAccessError{Op: "open", Key: key, Kind: classifyFS(err), Err: err}
	}
	return f, nil
}

func classifyFS(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrObjectNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrAccessDenied
	}
	return nil
}
