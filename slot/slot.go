// Package slot provides durable locations for a single state blob.
//
// A slot holds one value, overwritten by every write. Reading a slot that was
// never written returns ErrEmpty.
package slot

import (
	"context"
	"errors"
	"sync"
)

// ErrEmpty is returned when reading a slot that was never written.
var ErrEmpty = errors.New("empty slot")

// Memory is a slot living in memory only. Its zero value is an empty slot.
type Memory struct {
	name string
	mu   sync.Mutex
	blob []byte
	set  bool
}

// NewMemory returns an empty Memory slot.
func NewMemory(name string) *Memory { return &Memory{name: name} }

func (m *Memory) Name() string { return "memory:" + m.name }

func (m *Memory) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrEmpty
	}
	return append([]byte(nil), m.blob...), nil
}

func (m *Memory) Write(ctx context.Context, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob, m.set = append([]byte(nil), blob...), true
	return nil
}
