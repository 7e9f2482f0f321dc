package store

import (
	"log/slog"
	"sync"

	"github.com/meshworks/gridnode/uid"
)

// Memory is the default in-process store. It lives and dies with the
// worker that owns it; nothing persists across restarts.
type Memory struct {
	logger *slog.Logger
	mu     sync.RWMutex
	items  map[uid.UID]any
}

var _ Store = &Memory{}

func NewMemory(logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		logger: logger.WithGroup("store"),
		items:  make(map[uid.UID]any),
	}
}

func (m *Memory) Save(id uid.UID, obj any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[id]; exists {
		m.logger.Debug("overwriting existing entry", "id", id.String())
	}
	m.items[id] = obj
	return nil
}

func (m *Memory) Get(id uid.UID) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.items[id]
	if !ok {
		return nil, &ErrNotFound{ID: id}
	}
	return obj, nil
}

func (m *Memory) Delete(id uid.UID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return &ErrNotFound{ID: id}
	}
	delete(m.items, id)
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
