package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"warden/contexts/moderation-safety/audit-trail/domain/entities"
	domainerrors "warden/contexts/moderation-safety/audit-trail/domain/errors"
	"warden/contexts/moderation-safety/audit-trail/ports"
)

type Store struct {
	mu       sync.RWMutex
	entries  []entities.Entry
	index    map[string]struct{}
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		index: map[string]struct{}{},
	}
}

func (s *Store) AppendEntry(_ context.Context, entry entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[entry.EntryID]; exists {
		return domainerrors.ErrDuplicateEntry
	}
	s.index[entry.EntryID] = struct{}{}
	s.entries = append(s.entries, cloneEntry(entry))
	return nil
}

func (s *Store) ListEntries(_ context.Context, filter ports.EntryFilter) ([]entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if matches(entry, filter) {
			matched = append(matched, cloneEntry(entry))
		}
	}
	// Newest first; append order breaks ties for entries written in the same instant.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	reverseTies(matched)

	if filter.Offset >= len(matched) {
		return []entities.Entry{}, nil
	}
	end := len(matched)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matched[filter.Offset:end], nil
}

// Entries returns a snapshot in append order. Used by tests and local tooling.
func (s *Store) Entries() []entities.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		items = append(items, cloneEntry(entry))
	}
	return items
}

// CountAction returns how many entries carry the given action tag.
func (s *Store) CountAction(action string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, entry := range s.entries {
		if entry.Action == action {
			count++
		}
	}
	return count
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("audit-%d", n), nil
}

func matches(entry entities.Entry, filter ports.EntryFilter) bool {
	if filter.TargetID != "" && entry.TargetID != filter.TargetID {
		return false
	}
	if filter.ActorID != "" && entry.ActorID != filter.ActorID {
		return false
	}
	if filter.Action != "" && entry.Action != filter.Action {
		return false
	}
	if filter.Status != "" && entry.Status != filter.Status {
		return false
	}
	if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && entry.Timestamp.After(filter.Until) {
		return false
	}
	return true
}

// reverseTies flips runs of equal timestamps so later appends come first.
func reverseTies(items []entities.Entry) {
	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && items[end].Timestamp.Equal(items[start].Timestamp) {
			end++
		}
		for i, j := start, end-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
		start = end
	}
}

func cloneEntry(entry entities.Entry) entities.Entry {
	details := make(map[string]any, len(entry.Details))
	for key, value := range entry.Details {
		details[key] = value
	}
	entry.Details = details
	return entry
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
