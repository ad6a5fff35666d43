package entity

import "time"

type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusDone      JobStatus = "done"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusFailed    JobStatus = "failed"
)

func (s JobStatus) IsTerminal() bool {
	return s != JobStatusRunning
}

// Job is a read-only snapshot of one batch analysis run.
type Job struct {
	ID          string
	Status      JobStatus
	Progress    int
	Total       int
	BatchSize   int
	Results     []Opportunity
	Cancelled   bool
	FailedItems int
	Error       string
	Constraints Constraints
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
