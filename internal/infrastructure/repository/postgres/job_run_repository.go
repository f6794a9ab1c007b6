package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tonttery/internal/domain/jobrun"
	qb "github.com/riskibarqy/tonttery/internal/platform/querybuilder"
)

type JobRunRepository struct {
	db    *sqlx.DB
	guard *Guard
}

func NewJobRunRepository(db *sqlx.DB, guard *Guard) *JobRunRepository {
	return &JobRunRepository{db: db, guard: guard}
}

// UpsertEvent keeps one row per run id. A retried run of the same day moves
// the row back to started and clears the previous failure.
func (r *JobRunRepository) UpsertEvent(ctx context.Context, event jobrun.Event) error {
	runID := strings.TrimSpace(event.RunID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	jobName := strings.TrimSpace(event.JobName)
	if jobName == "" {
		jobName = "unknown"
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payloadJSON, err := marshalPayload(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal job run payload: %w", err)
	}

	model := jobRunInsertModel{
		RunID:     runID,
		JobName:   jobName,
		Payload:   payloadJSON,
		Status:    string(event.Status),
		LastError: nullableString(event.ErrorMessage),
	}

	switch event.Status {
	case jobrun.StatusStarted:
		model.StartedAt = &occurredAt
		model.StartedTraceID = nullableString(event.TraceID)
		model.StartedSpanID = nullableString(event.SpanID)
		model.LastError = nil
	case jobrun.StatusCompleted:
		model.CompletedAt = &occurredAt
		model.CompletedTraceID = nullableString(event.TraceID)
		model.CompletedSpanID = nullableString(event.SpanID)
		model.LastError = nil
	case jobrun.StatusFailed:
		model.FailedAt = &occurredAt
		model.FailedTraceID = nullableString(event.TraceID)
		model.FailedSpanID = nullableString(event.SpanID)
	default:
		return fmt.Errorf("unknown job run status %q", event.Status)
	}

	query, args, err := qb.InsertModel(jobRunTable, model, `ON CONFLICT (run_id)
DO UPDATE SET
    job_name = EXCLUDED.job_name,
    payload = EXCLUDED.payload,
    status = EXCLUDED.status,
    started_at = CASE
        WHEN EXCLUDED.status = 'started' THEN EXCLUDED.started_at
        ELSE COALESCE(job_runs.started_at, EXCLUDED.started_at)
    END,
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        WHEN EXCLUDED.status = 'started' THEN NULL
        ELSE job_runs.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status IN ('started', 'completed') THEN NULL
        ELSE job_runs.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    started_trace_id = CASE
        WHEN EXCLUDED.status = 'started' THEN EXCLUDED.started_trace_id
        ELSE job_runs.started_trace_id
    END,
    started_span_id = CASE
        WHEN EXCLUDED.status = 'started' THEN EXCLUDED.started_span_id
        ELSE job_runs.started_span_id
    END,
    completed_trace_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_trace_id
        ELSE job_runs.completed_trace_id
    END,
    completed_span_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_span_id
        ELSE job_runs.completed_span_id
    END,
    failed_trace_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_trace_id
        ELSE job_runs.failed_trace_id
    END,
    failed_span_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_span_id
        ELSE job_runs.failed_span_id
    END,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert job run query: %w", err)
	}

	return r.guard.Do(ctx, func(ctx context.Context) error {
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert job run run_id=%s status=%s: %w", runID, event.Status, err)
		}
		return nil
	})
}

func marshalPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := jsoniter.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
