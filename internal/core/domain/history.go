package domain

import "time"

// RunStatus is the outcome of a recorded run.
type RunStatus string

// Run outcomes.
const (
	RunStatusSucceeded  RunStatus = "succeeded"
	RunStatusFailed     RunStatus = "failed"
	RunStatusSuperseded RunStatus = "superseded"
)

// RunRecord is the metadata of one pipeline run. Results themselves are
// never persisted.
type RunRecord struct {
	// ID is the run identifier.
	ID string

	// Origin is the origin address of the run.
	Origin string

	// RadiusMiles is the requested radius.
	RadiusMiles float64

	// Keywords are the keywords searched.
	Keywords []string

	// Candidates is the number of unique places before enrichment.
	Candidates int

	// Matches is the number of places within the radius.
	Matches int

	// DetailFailures counts dropped details lookups.
	DetailFailures int

	// Status is the run outcome.
	Status RunStatus

	// Error contains the error message if the run failed.
	Error string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration
}
