package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrGenerationCancelled is returned when a generation run is cancelled
// through its context. It is sampled at property and chunk boundaries only,
// never mid-chunk.
var ErrGenerationCancelled = errors.New("generation cancelled")

// InvalidRangeError reports a custom date range whose start falls after its
// end.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(WireDateFormat), e.End.Format(WireDateFormat))
}

// PropertiesNotFoundError reports explicitly requested property ids that are
// absent from the resolved catalog set. It aborts a run before any pricing
// work starts.
type PropertiesNotFoundError struct {
	MissingIDs []int64
}

func (e *PropertiesNotFoundError) Error() string {
	return fmt.Sprintf("properties not found in catalog: %v", e.MissingIDs)
}

// PropertyGenerationError wraps an unexpected failure while assembling one
// property's payload. A half-built export is unsafe to ship, so this is
// fatal to the whole run.
type PropertyGenerationError struct {
	PropertyID int64
	Err        error
}

func (e *PropertyGenerationError) Error() string {
	return fmt.Sprintf("payload generation failed for property %d: %v", e.PropertyID, e.Err)
}

func (e *PropertyGenerationError) Unwrap() error { return e.Err }
