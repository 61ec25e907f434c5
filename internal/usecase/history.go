package usecase

import (
	"sync"
	"time"

	"aitotype/internal/domain"
)

const defaultHistoryLimit = 20

// HistoryCache keeps the most recent transcripts in memory, newest first.
type HistoryCache struct {
	mu      sync.Mutex
	limit   int
	entries []domain.HistoryEntry
}

func NewHistoryCache(limit int) *HistoryCache {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &HistoryCache{limit: limit}
}

// Add prepends text and drops the oldest entries beyond the limit.
func (h *HistoryCache) Add(at time.Time, text string) []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := domain.HistoryEntry{Time: at.Local().Format("15:04"), Text: text}
	h.entries = append([]domain.HistoryEntry{entry}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	return h.snapshotLocked()
}

// Entries returns a copy of the cached entries.
func (h *HistoryCache) Entries() []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// Get returns the entry at index, newest first.
func (h *HistoryCache) Get(index int) (domain.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.entries) {
		return domain.HistoryEntry{}, false
	}
	return h.entries[index], true
}

func (h *HistoryCache) snapshotLocked() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
