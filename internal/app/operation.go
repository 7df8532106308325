package app

import "time"

// CheckRun tracks a CLI invocation that may mutate the database.
// Runs are created in memory with an empty ID. Only DB-mutating commands
// persist them (giving them a UUID and a row in check_operations).
type CheckRun struct {
	ID         string
	Operation  string
	Parameters string
	StartedAt  time.Time
	Status     string // "success" or "error"
}

// NewCheckRun creates a new in-memory check run.
func NewCheckRun(operation, parameters string) *CheckRun {
	return &CheckRun{
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this run has been saved to the database.
func (r *CheckRun) Persisted() bool {
	return r.ID != ""
}
