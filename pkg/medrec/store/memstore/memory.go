package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/medrec/pkg/medrec/dataset"
	"github.com/cognicore/medrec/pkg/medrec/internalerr"
	"github.com/cognicore/medrec/pkg/medrec/store"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	bundle  *dataset.Bundle
	history map[string]store.HistoryEntry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{history: make(map[string]store.HistoryEntry)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ReplaceDataset stores a deep copy of b.
func (s *Store) ReplaceDataset(ctx context.Context, b *dataset.Bundle) error {
	if b == nil || len(b.Records) == 0 {
		return internalerr.ErrEmptyDataset
	}
	cp := copyBundle(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = cp
	return nil
}

// LoadDataset returns a deep copy of the stored dataset.
func (s *Store) LoadDataset(ctx context.Context) (*dataset.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bundle == nil {
		return nil, internalerr.ErrEmptyDataset
	}
	return copyBundle(s.bundle), nil
}

// AppendHistory records an entry; duplicate IDs are ignored.
func (s *Store) AppendHistory(ctx context.Context, e store.HistoryEntry) error {
	if e.ID == "" {
		return fmt.Errorf("history entry without id: %w", internalerr.ErrInvalidInput)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.Matched = append([]string(nil), e.Matched...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.history[e.ID]; !ok {
		s.history[e.ID] = e
	}
	return nil
}

// History returns up to limit entries, newest ID first.
func (s *Store) History(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	out := make([]store.HistoryEntry, 0, len(s.history))
	for _, e := range s.history {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyBundle(b *dataset.Bundle) *dataset.Bundle {
	cp := dataset.NewBundle()
	cp.Records = make([]vocab.Record, len(b.Records))
	for i, r := range b.Records {
		cp.Records[i] = vocab.Record{Disease: r.Disease, Symptoms: append([]string(nil), r.Symptoms...)}
	}
	for k, v := range b.Descriptions {
		cp.Descriptions[k] = v
	}
	copyLists(cp.Medications, b.Medications)
	copyLists(cp.Diets, b.Diets)
	copyLists(cp.Precautions, b.Precautions)
	copyLists(cp.Workouts, b.Workouts)
	return cp
}

func copyLists(dst, src map[string][]string) {
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
}
