// internal/store/memory.go
//
// In-memory implementation of game.Recorder.
// Keeps the most recent finished rounds in a fixed-size ring; used when no
// SQLite archive is configured and in tests.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Oldest rounds are overwritten once the ring is full.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/firebolt55439/airplay-hangman/internal/game"
)

// DefaultCapacity is the ring size used by NewMemory when capacity <= 0.
const DefaultCapacity = 256

// Memory is a ring buffer of finished rounds.
type Memory struct {
	mu    sync.RWMutex       // guards ring, next, count
	ring  []game.RoundRecord // fixed capacity
	next  int                // slot the next record is written to
	count int
}

var _ game.Recorder = (*Memory)(nil)

// NewMemory returns an empty ring holding up to capacity rounds.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{ring: make([]game.RoundRecord, capacity)}
}

// RecordRound stores r, evicting the oldest record when full.
func (m *Memory) RecordRound(_ context.Context, r game.RoundRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ring[m.next] = r
	m.next = (m.next + 1) % len(m.ring)
	if m.count < len(m.ring) {
		m.count++
	}
	return nil
}

// RecentRounds returns up to limit records, newest first.
func (m *Memory) RecentRounds(_ context.Context, limit int) ([]game.RoundRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > m.count {
		limit = m.count
	}
	out := make([]game.RoundRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.ring)) % len(m.ring)
		out = append(out, m.ring[idx])
	}
	return out, nil
}
