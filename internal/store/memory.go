package store

import (
	"context"
	"sync"
)

// Memory is an in-process store, used for tests and throwaway runs.
type Memory struct {
	mu     sync.Mutex
	data   map[string][]byte
	subs   map[chan Change]struct{}
	closed bool
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
		subs: make(map[chan Change]struct{}),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}

	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)

	for ch := range m.subs {
		select {
		case ch <- Change{Keys: []string{key}, Area: "memory"}:
		default:
		}
	}

	return nil
}

func (m *Memory) Watch(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, 16)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, nil
	}
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.unsubscribe(ch)
	}()

	return ch, nil
}

func (m *Memory) unsubscribe(ch chan Change) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(ch)
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for ch := range m.subs {
		delete(m.subs, ch)
		close(ch)
	}

	return nil
}
