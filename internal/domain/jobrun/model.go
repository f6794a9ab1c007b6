package jobrun

import (
	"strings"
	"time"
)

type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Event is one audit record of a scheduler job run.
type Event struct {
	RunID        string
	JobName      string
	Status       Status
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

// RunID is deterministic per job and calendar day, so a retried run updates
// the same record.
func RunID(jobName string, day time.Time) string {
	return strings.TrimSpace(jobName) + "-" + day.UTC().Format("20060102")
}
