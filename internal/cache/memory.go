package cache

import (
	"context"
	"sync"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
)

// Memory is an in-process cache that keeps the newest Capacity entries.
// Capacity <= 0 means 1, so a new dataset replaces the previous one.
type Memory struct {
	Capacity int

	mu    sync.Mutex
	order []string
	items map[string]*dataset.Dataset
}

func NewMemory(capacity int) *Memory {
	return &Memory{Capacity: capacity}
}

func (m *Memory) capacity() int {
	if m.Capacity <= 0 {
		return 1
	}
	return m.Capacity
}

func (m *Memory) Get(_ context.Context, key string) (*dataset.Dataset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.items[key]
	return ds, ok
}

func (m *Memory) Put(_ context.Context, key string, ds *dataset.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]*dataset.Dataset)
	}
	if _, ok := m.items[key]; ok {
		m.items[key] = ds
		return nil
	}
	m.items[key] = ds
	m.order = append(m.order, key)
	for len(m.order) > m.capacity() {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.items, oldest)
	}
	return nil
}

// Len reports the number of cached datasets.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
