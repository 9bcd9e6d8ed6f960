package store

import (
	"bytes"
	"context"
	"sync"

	"github.com/rushteam/rentprice/core"
)

// MemoryStore 是内存实现的 ArtifactStore，用于测试/开发/原型。
// 模型与元数据共用同一个 key 空间。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Name() string { return "memory" }

// Put 写入一个制品（拷贝）
func (m *MemoryStore) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = bytes.Clone(value)
}

// Delete 删除一个制品
func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *MemoryStore) FetchModel(ctx context.Context, key string) ([]byte, error) {
	return m.get(ctx, key)
}

func (m *MemoryStore) FetchMetadata(ctx context.Context, key string) ([]byte, error) {
	return m.get(ctx, key)
}

func (m *MemoryStore) get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, transient(m.Name(), key, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, notFound(m.Name(), key)
	}
	return bytes.Clone(v), nil
}

var _ core.ArtifactStore = (*MemoryStore)(nil)
