package domain

import "context"

// RunnerPort drives pipeline runs
type RunnerPort interface {
	// Process walks every unprocessed signal through extraction,
	// embedding, dedup, and scoring. Only one run executes at a time
	Process(ctx context.Context) Result
	// Running reports whether a run is currently in flight
	Running() bool
}
