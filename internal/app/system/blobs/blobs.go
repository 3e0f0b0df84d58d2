// Package blobs stores attachment bytes under generated storage names.
//
// The backend is waffle's storage.Store (local directory or S3) in production
// and waffle's in-memory store in tests. Store adds the pieces the attachment
// layer needs on top: byte counting on write and "already gone" detection on
// delete.
package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// DefaultContentType is recorded when an upload carries no content type.
const DefaultContentType = "application/octet-stream"

// maxNameLen caps the sanitized part of a storage name.
const maxNameLen = 100

// Backend is the subset of storage.Store used here.
type Backend interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// Store writes, reads and removes blobs through a Backend.
type Store struct {
	b Backend
}

// New wraps b.
func New(b Backend) *Store {
	return &Store{b: b}
}

// Save writes r under name and returns the number of bytes actually written.
func (s *Store) Save(ctx context.Context, name string, r io.Reader, contentType string) (int64, error) {
	if contentType == "" {
		contentType = DefaultContentType
	}
	cr := &countingReader{r: r}
	if err := s.b.Put(ctx, name, cr, &storage.PutOptions{ContentType: contentType}); err != nil {
		return 0, err
	}
	return cr.n, nil
}

// Open returns a reader for the blob stored under name.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.b.Get(ctx, name)
}

// Remove deletes the blob stored under name. A blob that is already gone is
// reported as missing=true with a nil error.
func (s *Store) Remove(ctx context.Context, name string) (missing bool, err error) {
	err = s.b.Delete(ctx, name)
	switch {
	case err == nil:
		return false, nil
	case IsNotFound(err):
		return true, nil
	default:
		return false, err
	}
}

// IsNotFound reports whether err means the blob does not exist. waffle
// backends return storage.ErrNotFound; raw filesystem errors carry
// fs.ErrNotExist.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// StorageName builds a collision-resistant storage name for an upload:
// "<unix seconds>-<8 hex chars>-<sanitized display name>". Two uploads of the
// same file in the same second still get distinct names.
func StorageName(displayName string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s-%s", now.Unix(), suffix, SanitizeName(displayName))
}

// SanitizeName reduces a client-supplied filename to a safe single path
// segment of [A-Za-z0-9._-]. Directory components are dropped and an empty
// or dot-only result becomes "file".
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if len(out) > maxNameLen {
		out = out[len(out)-maxNameLen:]
	}
	if strings.Trim(out, "._") == "" {
		return "file"
	}
	return out
}
