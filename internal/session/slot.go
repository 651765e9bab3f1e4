// Package session defines the persisted "current session" slot a
// SessionManager restores from and writes back to.
package session

import (
	"context"
	"sync"
)

// Slot is a single persisted key-value cell holding a serialized user.
// Read returns nil bytes when the slot is empty.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// Provider hands out the slot belonging to one session id.
type Provider interface {
	Slot(id string) Slot
}

// MemorySlots keeps slots in process memory.
type MemorySlots struct {
	mu    sync.Mutex
	slots map[string][]byte
}

var _ Provider = (*MemorySlots)(nil)

// NewMemorySlots returns an empty in-memory provider.
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: map[string][]byte{}}
}

// Slot returns the slot for id.
func (m *MemorySlots) Slot(id string) Slot {
	return &memorySlot{owner: m, id: id}
}

// Put stores raw bytes under id. Tests use it to plant corrupt sessions.
func (m *MemorySlots) Put(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[id] = append([]byte(nil), data...)
}

// Has reports whether id holds data.
func (m *MemorySlots) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.slots[id]
	return ok
}

type memorySlot struct {
	owner *MemorySlots
	id    string
}

func (s *memorySlot) Read(ctx context.Context) ([]byte, error) {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	data, ok := s.owner.slots[s.id]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *memorySlot) Write(ctx context.Context, data []byte) error {
	s.owner.Put(s.id, data)
	return nil
}

func (s *memorySlot) Clear(ctx context.Context) error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	delete(s.owner.slots, s.id)
	return nil
}
