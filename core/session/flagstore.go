package session

import (
	"context"
	"sync"
	"time"
)

// FlagStore persists small advisory flags outside process memory, standing in
// for the browser's tab-scoped storage. Values are caches only: everything in
// them is re-derivable from a fresh identity fetch, so implementations swallow
// their own failures and readers treat absence as false.
type FlagStore interface {
	GetBool(ctx context.Context, key string) bool
	SetBool(ctx context.Context, key string, v bool)
	Delete(ctx context.Context, key string)
}

// Signal is the cross-process "auth changed" channel, standing in for the
// browser's storage event on the shared timestamp key. Announce is best-effort;
// Subscribe delivers peer announcements until the returned cancel runs.
type Signal interface {
	Announce(ctx context.Context)
	Subscribe(fn func()) (cancel func())
}

// MemoryFlags is the in-process FlagStore.
type MemoryFlags struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewMemoryFlags creates an empty in-memory flag store.
func NewMemoryFlags() *MemoryFlags {
	return &MemoryFlags{flags: make(map[string]bool)}
}

func (m *MemoryFlags) GetBool(_ context.Context, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[key]
}

func (m *MemoryFlags) SetBool(_ context.Context, key string, v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = v
}

func (m *MemoryFlags) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, key)
}

// MemorySignal fans announcements out to every subscriber in-process. Stores
// sharing one MemorySignal behave like browser tabs sharing localStorage.
type MemorySignal struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()

	lastAnnounce time.Time
}

// NewMemorySignal creates a signal bus with no subscribers.
func NewMemorySignal() *MemorySignal {
	return &MemorySignal{subs: make(map[int]func())}
}

func (b *MemorySignal) Announce(_ context.Context) {
	b.mu.Lock()
	b.lastAnnounce = time.Now()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (b *MemorySignal) Subscribe(fn func()) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}
