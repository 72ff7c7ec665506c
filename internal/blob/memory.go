package blob

import (
	"context"
	"fmt"
	"sync"
)

// Object is a blob held by Memory.
type Object struct {
	Data        []byte
	ContentType string
}

// Memory is an in-process Store for tests and local runs.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
	host    string

	// UploadErr, when set, fails every upload.
	UploadErr error
}

// NewMemory returns an empty store whose URLs are rooted at host.
func NewMemory(host string) *Memory {
	return &Memory{objects: make(map[string]Object), host: host}
}

func (m *Memory) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.UploadErr != nil {
		return m.UploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[path]; exists {
		return nil
	}
	m.objects[path] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *Memory) RetrievalURL(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return DownloadURL(m.host, "memory", path, "local"), nil
}

// Get returns the object stored at path.
func (m *Memory) Get(path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	return obj, ok
}

// Len reports how many objects are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
