package domain

import (
	"context"

	sigdomain "github.com/iliebabcenco/big-collector/internal/services/signals/domain"
)

// Source is one platform-specific collector
type Source interface {
	Type() sigdomain.SourceType
	// Collect runs one collection pass. Cancellation arrives through ctx,
	// partial progress is reported in the Result either way
	Collect(ctx context.Context, cfg RunConfig) Result
}

// AdminPort drives collectors and reports their state
type AdminPort interface {
	// Start launches an async run. found is false for unknown collectors,
	// started is false when one is already running
	Start(ctx context.Context, src sigdomain.SourceType) (found, started bool, err error)
	// Stop cancels a running collection. running is false when there was none
	Stop(ctx context.Context, src sigdomain.SourceType) (running bool, err error)
	Statuses(ctx context.Context) ([]StatusView, error)
	StatusOf(ctx context.Context, src sigdomain.SourceType) (StatusView, bool, error)
	RecentRuns(ctx context.Context) ([]RunLogEntry, error)
}

// TargetPort lists enabled targets for a source
type TargetPort interface {
	EnabledTargets(ctx context.Context, src sigdomain.SourceType) ([]Target, error)
}

// RunLogPort records completed runs
type RunLogPort interface {
	Append(ctx context.Context, e RunLogEntry) error
	Recent(ctx context.Context, limit int) ([]RunLogEntry, error)
}
