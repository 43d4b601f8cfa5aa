package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"video-uploader/internal/domain/repositories"
)

type MemoryObject struct {
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// MemoryStorage is an in-process ObjectStorage. Err, when set, fails every call.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
	Err     error
}

var _ repositories.ObjectStorage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]MemoryObject)}
}

func (m *MemoryStorage) PutObject(ctx context.Context, in repositories.PutObjectInput) error {
	if m.Err != nil {
		return m.Err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, in.Body); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[in.Key] = MemoryObject{Data: buf.Bytes(), ContentType: in.ContentType, Metadata: in.Metadata}
	return nil
}

func (m *MemoryStorage) DeleteObject(ctx context.Context, key string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryStorage) Get(key string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
