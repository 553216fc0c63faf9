package domain

import "context"

// IngestPort records new signals, skipping ones already seen
type IngestPort interface {
	// Ingest stores a signal unless (sourceType, sourceID) already exists.
	// Returns true when a new row was written
	Ingest(ctx context.Context, sourceType SourceType, sourceID, rawText string) (bool, error)
	// Seen reports whether a signal with this identity was collected before
	Seen(ctx context.Context, sourceType SourceType, sourceID string) (bool, error)
}

// QueuePort exposes the unprocessed backlog to the pipeline
type QueuePort interface {
	Unprocessed(ctx context.Context) ([]Signal, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

// PromptPort resolves database-managed prompt overrides by name
type PromptPort interface {
	// ActivePrompt returns the active system prompt for name, or "" when
	// no override is configured
	ActivePrompt(ctx context.Context, name string) (string, error)
}
