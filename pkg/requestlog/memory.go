package requestlog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// MemoryStore implements Store with a capacity-bounded in-memory buffer.
// Eviction is FIFO: once at capacity, recording a new entry drops the oldest.
type MemoryStore struct {
	entries    []*Entry
	maxEntries int
	mu         sync.RWMutex
}

// NewMemoryStore creates a MemoryStore holding at most maxEntries entries.
// Non-positive capacities fall back to 1000.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryStore{
		entries:    make([]*Entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Log records a request log entry. A missing ID or timestamp is filled in.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	// FIFO eviction: remove oldest if at capacity
	if len(s.entries) >= s.maxEntries {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, entry)
}

// Get retrieves a log entry by ID. The returned entry is a copy.
func (s *MemoryStore) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			return entry.Clone()
		}
	}
	return nil
}

// List returns log entries oldest first, optionally filtered. The returned
// entries are copies.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter != nil && !matchesFilter(entry, filter) {
			continue
		}
		result = append(result, entry.Clone())
	}

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return []*Entry{}
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}

	return result
}

// matchesFilter checks if an entry matches all filter criteria.
func matchesFilter(entry *Entry, filter *Filter) bool {
	if filter.Method != "" && entry.Method != filter.Method {
		return false
	}
	if filter.URLPrefix != "" && !strings.HasPrefix(entry.URL, filter.URLPrefix) {
		return false
	}
	if filter.Matched != nil && entry.Matched != *filter.Matched {
		return false
	}
	if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
		return false
	}
	return true
}

// Clear removes all log entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*Entry, 0, s.maxEntries)
}

// Count returns the number of log entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// QueryBodies evaluates a JSONPath expression against every stored request
// body and returns the matched values, oldest entry first. String and []byte
// bodies are decoded as JSON; bodies that are not valid JSON are skipped.
// Other body types (already-structured data) are queried as-is.
func (s *MemoryStore) QueryBodies(path string) ([]any, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("parsing jsonpath %q: %w", path, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []any
	for _, entry := range s.entries {
		var data any
		switch b := entry.Body.(type) {
		case nil:
			continue
		case string:
			if err := oj.Unmarshal([]byte(b), &data); err != nil {
				continue
			}
		case []byte:
			if err := oj.Unmarshal(b, &data); err != nil {
				continue
			}
		default:
			data = b
		}
		results = append(results, expr.Get(data)...)
	}
	return results, nil
}
