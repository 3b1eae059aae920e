package blocksci

import "time"

// Outcome of one pipeline step within a run.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
)

// One row of the run log.  A record is appended after every step; the
// SavedTo field holds the checkpoint destination written after the step
// (empty when checkpointing itself failed).
type StepRecord struct {
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	StartedAt  time.Time  `json:"started-at"`
	FinishedAt time.Time  `json:"finished-at"`
	SavedTo    string     `json:"saved-to,omitempty"`
	StdOutUrl  string     `json:"std-out-url,omitempty"`
	StdErrUrl  string     `json:"std-err-url,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// Find the record for the named step, or nil.  Later records win so a
// resumed run sees the most recent outcome.
func findStepRecord(records []StepRecord, name string) *StepRecord {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Name == name {
			return &records[i]
		}
	}
	return nil
}

// True when the step already ran to completion (or was legitimately
// skipped) in an earlier attempt of this run.
func stepAlreadyDone(records []StepRecord, name string) bool {
	record := findStepRecord(records, name)
	if record == nil {
		return false
	}
	return record.Status == StepCompleted || record.Status == StepSkipped
}
