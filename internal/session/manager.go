package session

import (
	"context"
	"log"
	"sync"
	"time"

	"animehub/internal/storage"
)

// Manager owns one Store per browser session id.
type Manager struct {
	Users    Users
	Storage  storage.Store
	Notifier Notifier
	Idle     time.Duration

	mu       sync.RWMutex
	sessions map[string]*entry
}

// entry is published before its store is restored; ready closes once the
// restore has finished.
type entry struct {
	store *Store
	ready chan struct{}
}

func (e *entry) restored() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

func NewManager(users Users, st storage.Store, n Notifier, idle time.Duration) *Manager {
	return &Manager{
		Users:    users,
		Storage:  st,
		Notifier: n,
		Idle:     idle,
		sessions: make(map[string]*entry),
	}
}

// Get returns the store for id, restoring it from storage on first use.
// Concurrent callers for the same id wait for that restore. A failed restore
// is retried by the next Get.
func (m *Manager) Get(ctx context.Context, id string) *Store {
	m.mu.Lock()
	if e, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		select {
		case <-e.ready:
		case <-ctx.Done():
		}
		return e.store
	}
	e := &entry{
		store: NewStore(id, m.Users, m.Storage, m.Notifier, m.Idle),
		ready: make(chan struct{}),
	}
	m.sessions[id] = e
	m.mu.Unlock()

	// the restore outlives a cancelled first request; waiters depend on it
	err := e.store.Restore(context.WithoutCancel(ctx))
	if err != nil {
		log.Printf("[session] restore %s: %v", e.store.short(), err)
		m.mu.Lock()
		if m.sessions[id] == e {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
	}
	close(e.ready)
	return e.store
}

// Lookup returns a store that has finished restoring.
func (m *Manager) Lookup(id string) (*Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok || !e.restored() {
		return nil, false
	}
	return e.store, true
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep forgets logged-out sessions not seen for maxAge. Their storage is
// already empty, so nothing is lost. Sessions still restoring are skipped.
func (m *Manager) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if !e.restored() {
			continue
		}
		if s := e.store; !s.LoggedIn() && s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, maxAge time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(maxAge); n > 0 {
				log.Printf("[session] swept %d idle sessions", n)
			}
		}
	}
}
