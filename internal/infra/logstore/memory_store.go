package logstore

import (
	"context"
	"sync"
	"time"

	"github.com/dermalens/skin-advisor/internal/domain/stats"
)

// MemoryStore is the in-process fallback used when no Valkey address is
// configured, and the backend of choice in tests.
type MemoryStore struct {
	mu       sync.Mutex
	days     map[string][]stats.Entry
	users    map[string]stats.UserStat
	images   map[string]struct{}
	attempts map[string]*attemptWindow
	now      func() time.Time
}

type attemptWindow struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		days:     make(map[string][]stats.Entry),
		users:    make(map[string]stats.UserStat),
		images:   make(map[string]struct{}),
		attempts: make(map[string]*attemptWindow),
		now:      time.Now,
	}
}

func (m *MemoryStore) AppendEntry(ctx context.Context, day string, entry stats.Entry, retention time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[day] = append([]stats.Entry{entry}, m.days[day]...)
	return nil
}

func (m *MemoryStore) BumpUser(ctx context.Context, user string, lastUsed time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stat := m.users[user]
	stat.User = user
	stat.TotalAnalyses++
	stat.LastUsed = lastUsed
	m.users[user] = stat
	return nil
}

func (m *MemoryStore) MarkImage(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[hash] = struct{}{}
	return nil
}

func (m *MemoryStore) EntriesByDay(ctx context.Context, day string, limit int) ([]stats.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.days[day]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]stats.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func (m *MemoryStore) Users(ctx context.Context) ([]stats.UserStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]stats.UserStat, 0, len(m.users))
	for _, stat := range m.users {
		out = append(out, stat)
	}
	return out, nil
}

func (m *MemoryStore) UniqueImageCount(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.images)), nil
}

func (m *MemoryStore) IncrementAttempt(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	w, ok := m.attempts[key]
	if !ok || now.After(w.resetAt) {
		w = &attemptWindow{resetAt: now.Add(window)}
		m.attempts[key] = w
	}
	w.count++
	return w.count, nil
}

var _ stats.Store = (*MemoryStore)(nil)
