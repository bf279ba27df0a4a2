package cache

import (
	"context"
	"strings"
	"sync"
	"valorant-scout/internal/domain"
)

// Key identifies one lookup. MapName is lower-cased since map matching is
// case-insensitive; Window is domain.DateWindow.Key().
type Key struct {
	TeamID  string
	MapName string
	Window  string
}

func NewKey(teamID, mapName string, window domain.DateWindow) Key {
	return Key{
		TeamID:  strings.TrimSpace(teamID),
		MapName: strings.ToLower(strings.TrimSpace(mapName)),
		Window:  window.Key(),
	}
}

// Entry is a cached extraction outcome. A nil Record is a cached "not found".
type Entry struct {
	Record *domain.MapPerformanceRecord
}

func (e Entry) Found() bool {
	return e.Record != nil
}

// Store is append-only per key; entries are only ever removed all at once.
type Store interface {
	Get(ctx context.Context, key Key) (Entry, bool, error)
	Set(ctx context.Context, key Key, entry Entry) error
	Clear(ctx context.Context) error
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]Entry)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
