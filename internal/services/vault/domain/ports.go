package domain

import "context"

// SimilarityPort answers nearest-neighbour questions over entry embeddings
type SimilarityPort interface {
	// SearchSimilar returns entries whose cosine distance to vec is below
	// maxDistance, nearest first
	SearchSimilar(ctx context.Context, vec Vector, maxDistance float64, limit int) ([]Entry, error)
	// DistanceTo measures the cosine distance from entry id to vec.
	// ok is false when the entry is missing or has no embedding
	DistanceTo(ctx context.Context, id int64, vec Vector) (distance float64, ok bool, err error)
}

// WriterPort mutates the vault on behalf of the pipeline
type WriterPort interface {
	// Create inserts a new entry with its first evidence row
	Create(ctx context.Context, d Draft) (Entry, error)
	// Merge attaches evidence to an existing entry, bumping source_count,
	// confidence, and last_seen_at
	Merge(ctx context.Context, id int64, ev EvidenceDraft) (Entry, error)
	// SetScores writes the rubric scores for an entry
	SetScores(ctx context.Context, id int64, s Scores) error
}

// QueryPort serves vault reads for the HTTP API
type QueryPort interface {
	List(ctx context.Context, f Filter) ([]Entry, error)
	Get(ctx context.Context, id int64) (Entry, []Evidence, error)
}
