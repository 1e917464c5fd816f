// Package session tracks the active dataset per browser session. A session
// holds at most one dataset, replaced wholesale on each demo load or upload.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-dashboard/internal/dataset"
)

type Source string

const (
	SourceDemo   Source = "demo"
	SourceUpload Source = "upload"
)

// Dataset is the session-scoped active table plus provenance.
type Dataset struct {
	Table    *dataset.Table
	Source   Source
	Label    string
	LoadedAt time.Time
}

type entry struct {
	data     *Dataset
	lastSeen time.Time
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	done     chan struct{}
	closed   sync.Once
}

// NewStore starts a store whose idle sessions expire after ttl.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// NewID mints a session identifier.
func NewID() string {
	return uuid.NewString()
}

// Dataset returns the active dataset for the session, if any.
func (s *Store) Dataset(id string) (*Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || e.data == nil {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.data, true
}

// SetDataset replaces the session's dataset atomically.
func (s *Store) SetDataset(id string, t *dataset.Table, source Source, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &entry{
		data: &Dataset{
			Table:    t,
			Source:   source,
			Label:    label,
			LoadedAt: time.Now(),
		},
		lastSeen: time.Now(),
	}
}

// Clear discards the session's dataset.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Stats reports store metrics for the admin endpoint.
func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := 0
	for _, e := range s.sessions {
		if e.data != nil && e.data.Table != nil {
			rows += e.data.Table.NumRows()
		}
	}
	return map[string]any{
		"sessions":    len(s.sessions),
		"total_rows":  rows,
		"session_ttl": s.ttl.String(),
	}
}

// Shutdown stops the janitor. Safe to call more than once.
func (s *Store) Shutdown(ctx context.Context) error {
	s.closed.Do(func() { close(s.done) })
	return nil
}

func (s *Store) janitor() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, e := range s.sessions {
				if now.Sub(e.lastSeen) > s.ttl {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
