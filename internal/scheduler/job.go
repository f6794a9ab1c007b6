package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/tonttery/internal/usecase"
)

type Job string

const (
	JobCreate   Job = "create"
	JobAward    Job = "award"
	JobOverview Job = "overview"
)

var AllJobs = []Job{JobCreate, JobAward, JobOverview}

var (
	ErrUnknownJob = fmt.Errorf("%w: unknown job", usecase.ErrInvalidInput)
	ErrJobRunning = errors.New("job is already running")
	ErrPoolBusy   = errors.New("scheduler worker pool is busy")
	ErrStopped    = errors.New("scheduler is stopped")
)

func ParseJob(raw string) (Job, error) {
	job := Job(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllJobs {
		if job == known {
			return job, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownJob, raw)
}
