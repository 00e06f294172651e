package sim

import (
	"context"
	"sort"
	"sync"
	"time"

	"goLangClient/config"
	"goLangClient/state"
)

// Leaderboard keeps the all-time best results across rounds.
type Leaderboard interface {
	// RecordResults adds a round's results and returns the current top entries.
	RecordResults(ctx context.Context, results []state.LeaderboardEntry, at time.Time) ([]state.GlobalEntry, error)
}

// MemoryLeaderboard is the in-process leaderboard used when Redis is off.
type MemoryLeaderboard struct {
	mu      sync.Mutex
	entries []state.GlobalEntry
	maxSize int
}

func NewMemoryLeaderboard(maxSize int) *MemoryLeaderboard {
	if maxSize <= 0 {
		maxSize = config.LeaderboardMaxSize
	}
	return &MemoryLeaderboard{maxSize: maxSize}
}

func (m *MemoryLeaderboard) RecordResults(_ context.Context, results []state.LeaderboardEntry, at time.Time) ([]state.GlobalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	timestamp := at.UTC().Format(time.RFC3339)
	for _, r := range results {
		m.entries = append(m.entries, state.GlobalEntry{
			PlayerID:  r.PlayerID,
			Networth:  r.Networth,
			Timestamp: timestamp,
		})
	}

	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].Networth > m.entries[j].Networth
	})
	if len(m.entries) > m.maxSize {
		m.entries = m.entries[:m.maxSize]
	}

	n := min(len(m.entries), config.GlobalTopSize)
	return append([]state.GlobalEntry(nil), m.entries[:n]...), nil
}

func (m *MemoryLeaderboard) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
