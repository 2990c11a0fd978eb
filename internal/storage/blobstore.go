// Package storage lists and streams disclosure objects from a content store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// BlobStore lists and streams objects. Keys are full paths relative to the store root, with "/" separators.
// Pagination, credentials and retries are the implementation's concern.
type BlobStore interface {
	// List returns every object key starting with prefix, in the store's listing order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Open returns a stream over the object's content. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

var (
	// ErrStoreAccess is matched by every StoreAccessError.
	ErrStoreAccess = errors.New("store access error")

	ErrObjectNotFound = errors.New("object not found")
	ErrAccessDenied   = errors.New("access denied")
	ErrBucketNotFound = errors.New("bucket not found")
)

// StoreAccessError reports a failed listing or streaming call.
// Kind is one of ErrObjectNotFound, ErrAccessDenied, ErrBucketNotFound or nil when the cause is not classified.
type StoreAccessError struct {
	Op   string // "list" or "open"
	Key  string // Prefix for list, key for open
	Kind error
	Err  error
}

func (e *StoreAccessError) Error() string {
	msg := fmt.Sprintf("%s %q", e.Op, e.Key)
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreAccessError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *StoreAccessError) Is(target error) bool { return target == ErrStoreAccess }
