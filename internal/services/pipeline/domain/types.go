// Package domain defines the pipeline types and ports
package domain

// Result summarizes one pipeline run over the unprocessed backlog
type Result struct {
	Status            string `json:"status"`
	TotalSignals      int    `json:"totalSignals"`
	Processed         int    `json:"processed"`
	ProblemsExtracted int    `json:"problemsExtracted"`
	NoProblem         int    `json:"noProblem"`
	Errors            int    `json:"errors"`
	DurationMs        int64  `json:"durationMs"`

	// Err is set when the run never started, with Status holding the reason code
	Err string `json:"-"`
}

// Run status codes
const (
	StatusCompleted      = "COMPLETED"
	StatusSkipped        = "SKIPPED"
	StatusAlreadyRunning = "ALREADY_RUNNING"
)
