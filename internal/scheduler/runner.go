package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/jobrun"
	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/riskibarqy/tonttery/internal/platform/metrics"
	"github.com/riskibarqy/tonttery/internal/usecase"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var schedulerTracer = otel.Tracer("tonttery/internal/scheduler")

// Lifecycle is the mutating part of the lottery service driven by jobs.
type Lifecycle interface {
	Create(ctx context.Context, t lottery.Type, on time.Time) (usecase.LotteryResult, error)
	Award(ctx context.Context, t lottery.Type, startDate time.Time) (usecase.LotteryResult, error)
	Overview(ctx context.Context, since time.Time) (usecase.Overview, error)
}

// Notifier announces committed lifecycle changes. It never fails.
type Notifier interface {
	LotteryCreated(ctx context.Context, result usecase.LotteryResult)
	LotteryAwarded(ctx context.Context, result usecase.LotteryResult)
	Overview(ctx context.Context, overview usecase.Overview)
}

type RunResult struct {
	Job       Job               `json:"job"`
	RunID     string            `json:"runId"`
	Day       string            `json:"day"`
	Succeeded []string          `json:"succeeded"`
	Skipped   []string          `json:"skipped,omitempty"`
	Failed    map[string]string `json:"failed,omitempty"`
}

type outcome struct {
	lotteryType lottery.Type
	skipped     bool
	err         error
}

// Runner executes one job invocation for the current UTC day. Every lottery
// type is handled in its own goroutine behind its own panic boundary, so a
// failing type never blocks or undoes its siblings.
type Runner struct {
	lifecycle Lifecycle
	notifier  Notifier
	runs      jobrun.Repository
	metrics   *metrics.Metrics
	logger    *logging.Logger
	now       func() time.Time
}

func NewRunner(lifecycle Lifecycle, notifier Notifier, runs jobrun.Repository, m *metrics.Metrics, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{
		lifecycle: lifecycle,
		notifier:  notifier,
		runs:      runs,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *Runner) Run(ctx context.Context, job Job) (RunResult, error) {
	ctx, span := schedulerTracer.Start(ctx, "scheduler.Runner.Run", trace.WithAttributes(attribute.String("job", string(job))))
	defer span.End()

	day := lottery.Date(r.now())
	result := RunResult{
		Job:       job,
		RunID:     jobrun.RunID(string(job), day),
		Day:       day.Format(lottery.DateLayout),
		Succeeded: []string{},
	}

	var run func(context.Context, lottery.Type, time.Time) (bool, error)
	switch job {
	case JobCreate:
		run = r.createOne
	case JobAward:
		run = r.awardOne
	case JobOverview:
	default:
		return result, fmt.Errorf("%w %q", ErrUnknownJob, job)
	}

	started := time.Now()
	r.record(ctx, result, jobrun.StatusStarted, nil)
	r.logger.InfoContext(ctx, "job started", "job", job, "run_id", result.RunID)

	var err error
	if job == JobOverview {
		err = r.overview(ctx, &result, day)
	} else {
		err = r.forEachType(ctx, job, &result, day, run)
	}

	status := jobrun.StatusCompleted
	if err != nil {
		status = jobrun.StatusFailed
		span.RecordError(err)
		r.logger.ErrorContext(ctx, "job failed", "job", job, "run_id", result.RunID, "error", err)
	} else {
		r.logger.InfoContext(ctx, "job completed", "job", job, "run_id", result.RunID, "succeeded", len(result.Succeeded), "skipped", len(result.Skipped))
	}
	r.record(ctx, result, status, err)
	r.metrics.RecordJobRun(string(job), string(status), time.Since(started))

	return result, err
}

func (r *Runner) forEachType(
	ctx context.Context,
	job Job,
	result *RunResult,
	day time.Time,
	run func(context.Context, lottery.Type, time.Time) (bool, error),
) error {
	types := lottery.ActiveTypes(day)
	outcomes := make([]outcome, len(types))

	var wg conc.WaitGroup
	for i, t := range types {
		wg.Go(func() {
			outcomes[i] = isolate(t, func() (bool, error) { return run(ctx, t, day) })
		})
	}
	wg.Wait()

	var errs []error
	for _, o := range outcomes {
		r.metrics.RecordLifecycle(string(job), string(o.lotteryType), o.err)
		switch {
		case o.err != nil:
			if result.Failed == nil {
				result.Failed = make(map[string]string)
			}
			result.Failed[string(o.lotteryType)] = o.err.Error()
			errs = append(errs, fmt.Errorf("%s %s: %w", job, o.lotteryType, o.err))
			r.logger.WarnContext(ctx, "job type failed", "job", job, "type", o.lotteryType, "error", o.err)
		case o.skipped:
			result.Skipped = append(result.Skipped, string(o.lotteryType))
		default:
			result.Succeeded = append(result.Succeeded, string(o.lotteryType))
		}
	}
	return errors.Join(errs...)
}

// isolate turns a panic inside fn into an error for that type only.
func isolate(t lottery.Type, fn func() (bool, error)) outcome {
	var (
		catcher panics.Catcher
		skipped bool
		err     error
	)
	catcher.Try(func() {
		skipped, err = fn()
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return outcome{lotteryType: t, err: recovered.AsError()}
	}
	return outcome{lotteryType: t, skipped: skipped, err: err}
}

func (r *Runner) createOne(ctx context.Context, t lottery.Type, day time.Time) (bool, error) {
	created, err := r.lifecycle.Create(ctx, t, day)
	if err != nil {
		return false, err
	}
	if r.notifier != nil {
		r.notifier.LotteryCreated(ctx, created)
	}
	return false, nil
}

// awardOne resolves the lottery that starts today. A missing lottery is
// skipped: it was never created or another instance already awarded it.
func (r *Runner) awardOne(ctx context.Context, t lottery.Type, day time.Time) (bool, error) {
	awarded, err := r.lifecycle.Award(ctx, t, day)
	if errors.Is(err, usecase.ErrNotFound) {
		r.logger.InfoContext(ctx, "no lottery to award", "type", t, "start_date", day.Format(lottery.DateLayout))
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if r.notifier != nil {
		r.notifier.LotteryAwarded(ctx, awarded)
	}
	return false, nil
}

func (r *Runner) overview(ctx context.Context, result *RunResult, day time.Time) error {
	o := isolate("", func() (bool, error) {
		overview, err := r.lifecycle.Overview(ctx, day)
		if err != nil {
			return false, err
		}
		if r.notifier != nil {
			r.notifier.Overview(ctx, overview)
		}
		return false, nil
	})
	if o.err != nil {
		result.Failed = map[string]string{"overview": o.err.Error()}
		return o.err
	}
	result.Succeeded = append(result.Succeeded, "overview")
	return nil
}

func (r *Runner) record(ctx context.Context, result RunResult, status jobrun.Status, runErr error) {
	if r.runs == nil {
		return
	}

	event := jobrun.Event{
		RunID:   result.RunID,
		JobName: string(result.Job),
		Status:  status,
		Payload: map[string]any{
			"day":       result.Day,
			"succeeded": result.Succeeded,
			"skipped":   result.Skipped,
			"failed":    result.Failed,
		},
		OccurredAt: r.now().UTC(),
	}
	if runErr != nil {
		event.ErrorMessage = runErr.Error()
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		event.TraceID = spanCtx.TraceID().String()
		event.SpanID = spanCtx.SpanID().String()
	}

	if err := r.runs.UpsertEvent(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "record job run failed", "job", result.Job, "run_id", result.RunID, "status", status, "error", err)
	}
}
