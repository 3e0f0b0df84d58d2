package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/dalemusser/waffle/pantry/storage"
)

// MemoryBlobs is waffle's in-memory storage.Store with failure injection on
// Put, Get and Delete. Every other method is the embedded store's, so missing
// objects report storage.ErrNotFound exactly like the production backends.
type MemoryBlobs struct {
	*storage.Memory

	mu sync.Mutex

	// A non-nil error is returned by every matching call.
	PutErr    error
	GetErr    error
	DeleteErr error

	// BeforeDelete, when set, runs ahead of every Delete. A non-nil result
	// fails that Delete without touching the object.
	BeforeDelete func(path string) error
}

// NewMemoryBlobs returns an empty store.
func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{Memory: storage.NewMemory(storage.MemoryConfig{})}
}

func (m *MemoryBlobs) Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error {
	m.mu.Lock()
	err := m.PutErr
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.Memory.Put(ctx, path, r, opts)
}

func (m *MemoryBlobs) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	err := m.GetErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.Memory.Get(ctx, path)
}

func (m *MemoryBlobs) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	err, hook := m.DeleteErr, m.BeforeDelete
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		if err := hook(path); err != nil {
			return err
		}
	}
	return m.Memory.Delete(ctx, path)
}

// Has reports whether an object is stored under path.
func (m *MemoryBlobs) Has(path string) bool {
	ok, err := m.Memory.Exists(context.Background(), path)
	return err == nil && ok
}

// Bytes returns the object stored under path, or nil.
func (m *MemoryBlobs) Bytes(path string) []byte {
	data, err := m.Memory.GetBytes(context.Background(), path)
	if err != nil {
		return nil
	}
	return data
}

// ContentType returns the content type recorded for path.
func (m *MemoryBlobs) ContentType(path string) string {
	info, err := m.Memory.Head(context.Background(), path)
	if err != nil {
		return ""
	}
	return info.ContentType
}

// Paths returns the stored paths in sorted order.
func (m *MemoryBlobs) Paths() []string {
	res, err := m.Memory.List(context.Background(), "", &storage.ListOptions{MaxKeys: 1 << 20})
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(res.Objects))
	for _, o := range res.Objects {
		out = append(out, o.Path)
	}
	return out
}

// Drop removes an object behind the caller's back, simulating external
// deletion. Injected failures do not apply.
func (m *MemoryBlobs) Drop(path string) {
	_ = m.Memory.Delete(context.Background(), path)
}
