package store

import (
	"context"
	"time"

	"github.com/cognicore/medrec/pkg/medrec/dataset"
)

// Store persists imported datasets and the recommendations served from them.
type Store interface {
	Close() error

	// Dataset
	ReplaceDataset(ctx context.Context, b *dataset.Bundle) error
	LoadDataset(ctx context.Context) (*dataset.Bundle, error)

	// History
	AppendHistory(ctx context.Context, e HistoryEntry) error
	History(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// HistoryEntry is one served recommendation.
type HistoryEntry struct {
	ID        string
	Input     string
	Matched   []string
	Disease   string
	Tier      string
	Score     float64
	CreatedAt time.Time
}
