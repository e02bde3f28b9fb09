package models

import "time"

// GenerationPhase labels where a generation run currently is.
type GenerationPhase string

const (
	PhaseLoading     GenerationPhase = "loading"
	PhaseCalculating GenerationPhase = "calculating"
	PhaseOptimizing  GenerationPhase = "optimizing"
	PhaseValidating  GenerationPhase = "validating"
	PhaseComplete    GenerationPhase = "complete"
	PhaseError       GenerationPhase = "error"
)

// GenerationProgress is a transient progress snapshot emitted through the
// caller's callback. It is never persisted.
type GenerationProgress struct {
	Phase               GenerationPhase
	CurrentProperty     string
	TotalProperties     int
	CompletedProperties int
	Percentage          float64
	TimeElapsed         time.Duration
	EstimatedRemaining  time.Duration
}

// GenerationStatistics summarizes one completed generation run.
type GenerationStatistics struct {
	RunID                     string
	TotalProperties           int
	TotalDates                int
	TotalRatesGenerated       int
	OptimizationApplied       bool
	EntriesBeforeOptimization int
	EntriesAfterOptimization  int
	OptimizationReductionPct  float64
	GenerationTime            time.Duration
}

// ExportRun is the persisted record of one export invocation.
type ExportRun struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	Status          string
	TotalProperties int
	TotalRates      int
	ErrorMessage    string
}

// ExportRun status values.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)
