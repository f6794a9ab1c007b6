package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/riskibarqy/tonttery/internal/domain/jobrun"
)

func TestJobRunRepository_UpsertEvent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRunRepository(db, nil)
	at := time.Date(2023, 10, 2, 0, 0, 1, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tonttery.job_runs (run_id, job_name, payload, status, started_at, completed_at, failed_at, last_error")).
		WithArgs(
			"award-20231002", "award", `{"day":"2023-10-02"}`, "failed",
			nil, nil, at, "award WEEKLY: boom",
			nil, nil, nil, nil, nil, nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertEvent(context.Background(), jobrun.Event{
		RunID:        "award-20231002",
		JobName:      "award",
		Status:       jobrun.StatusFailed,
		Payload:      map[string]any{"day": "2023-10-02"},
		ErrorMessage: "award WEEKLY: boom",
		OccurredAt:   at,
	})
	if err != nil {
		t.Fatalf("upsert event: %v", err)
	}
}

func TestJobRunRepository_RejectsInvalidEvents(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewJobRunRepository(db, nil)

	if err := repo.UpsertEvent(context.Background(), jobrun.Event{Status: jobrun.StatusStarted}); err == nil {
		t.Fatalf("expected missing run id to be rejected")
	}
	if err := repo.UpsertEvent(context.Background(), jobrun.Event{RunID: "create-20231002", Status: "queued"}); err == nil {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestMarshalPayload(t *testing.T) {
	got, err := marshalPayload(nil)
	if err != nil || got != "{}" {
		t.Fatalf("empty payload: got=%q err=%v", got, err)
	}
}
