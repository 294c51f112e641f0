package statestore

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MemoryKV is an in-process KV used in tests and when redis is not
// configured. Values survive only for the process lifetime.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemoryKV) Get(ctx context.Context, key string, v interface{}) bool {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// Put implements KV.
func (m *MemoryKV) Put(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
}

// Delete implements KV.
func (m *MemoryKV) Delete(ctx context.Context, key string) {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
}

// Keys implements KV.
func (m *MemoryKV) Keys(ctx context.Context, prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}
