// Package memory provides long-term user memory for the workflow.
//
// Information Hiding:
// - Record addressing scheme (user id namespace + generated key)
// - Keyword heuristics deciding when to recall and when to save
// - Storage backend (in-process map or SQLite)
//
// Records are created on save, never updated, never deleted. Recall is
// best-effort keyword matching, not semantic search.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record types.
const (
	// TypeInteraction marks a record distilled from a user interaction.
	TypeInteraction = "interaction"
)

// Record is one long-term memory item.
type Record struct {
	// ID is the generated key within the user's namespace.
	ID string `json:"id"`
	// Text is the stored content.
	Text string `json:"text"`
	// Type classifies the record (see TypeInteraction).
	Type string `json:"type"`
	// Timestamp is the creation time in RFC 3339 form.
	Timestamp string `json:"timestamp"`
}

// NewRecord creates a record with a generated id and the current timestamp.
func NewRecord(text, recordType string) Record {
	return Record{
		ID:        uuid.New().String(),
		Text:      text,
		Type:      recordType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Store persists records per user.
type Store interface {
	// Put saves a record under the user's namespace.
	Put(ctx context.Context, userID string, rec Record) error
	// Search returns up to limit records for the user matching the query,
	// most recent first. A query no record matches yields the most recent
	// records instead, so recall degrades rather than going silent.
	Search(ctx context.Context, userID string, query string, limit int) ([]Record, error)
}

// InMemoryStore keeps records in a process-local map.
// Thread-safe; contents live for the process lifetime.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-process store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]Record)}
}

// Put saves a record under the user's namespace.
func (s *InMemoryStore) Put(_ context.Context, userID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID] = append(s.records[userID], rec)
	return nil
}

// Search returns up to limit matching records, most recent first.
func (s *InMemoryStore) Search(_ context.Context, userID string, query string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.records[userID]
	return selectRecords(all, query, limit), nil
}

// selectRecords filters by query substring, falling back to recency when
// nothing matches, and returns at most limit records newest first.
func selectRecords(all []Record, query string, limit int) []Record {
	if limit <= 0 {
		limit = 3
	}

	matched := make([]Record, 0, len(all))
	if q := strings.TrimSpace(query); q != "" {
		for _, rec := range all {
			if strings.Contains(rec.Text, q) {
				matched = append(matched, rec)
			}
		}
	}
	if len(matched) == 0 {
		matched = append(matched, all...)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]Record, len(matched))
	copy(out, matched)
	return out
}
