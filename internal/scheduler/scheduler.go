package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc/panics"
)

const (
	defaultWorkers = 3
	defaultLockTTL = 30 * time.Minute
)

// JobRunner runs one invocation of a job.
type JobRunner interface {
	Run(ctx context.Context, job Job) (RunResult, error)
}

type Config struct {
	CreateSpec   string
	AwardSpec    string
	OverviewSpec string
	Workers      int
	LockTTL      time.Duration
}

func DefaultConfig() Config {
	return Config{
		CreateSpec:   "@midnight",
		AwardSpec:    "@midnight",
		OverviewSpec: "0 0 18 * * *",
		Workers:      defaultWorkers,
		LockTTL:      defaultLockTTL,
	}
}

// Scheduler fires jobs from cron specs evaluated in UTC and executes them on a
// bounded worker pool. The same job never runs twice concurrently; distinct
// jobs do not wait on each other.
type Scheduler struct {
	cron   *cron.Cron
	pool   *ants.Pool
	runner JobRunner
	locker Locker
	cfg    Config
	logger *logging.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// mu orders wg.Add in dispatch against Stop's wg.Wait.
	mu     sync.Mutex
	closed bool
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func New(runner JobRunner, locker Locker, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler: runner is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if locker == nil {
		locker = NewLocalLocker()
	}
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaults.LockTTL
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create scheduler worker pool: %w", err)
	}

	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithParser(cronParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    c,
		pool:    pool,
		runner:  runner,
		locker:  locker,
		cfg:     cfg,
		logger:  logger,
		baseCtx: baseCtx,
		cancel:  cancel,
	}

	specs := map[Job]string{
		JobCreate:   firstNonEmpty(cfg.CreateSpec, defaults.CreateSpec),
		JobAward:    firstNonEmpty(cfg.AwardSpec, defaults.AwardSpec),
		JobOverview: firstNonEmpty(cfg.OverviewSpec, defaults.OverviewSpec),
	}
	for _, job := range AllJobs {
		if _, err := c.AddFunc(specs[job], s.fire(job)); err != nil {
			pool.Release()
			cancel()
			return nil, fmt.Errorf("schedule %s job with spec %q: %w", job, specs[job], err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "workers", s.cfg.Workers, "entries", len(s.cron.Entries()))
}

// Stop halts the cron clock and waits for running jobs until ctx expires.
// Dispatches after Stop fail with ErrStopped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("stop scheduler: %w", ctx.Err())
	}

	s.cancel()
	s.pool.Release()
	s.logger.Info("scheduler stopped")
	return err
}

// Trigger runs job now and returns its result. The run is detached from ctx
// cancellation: once started it runs to completion.
func (s *Scheduler) Trigger(ctx context.Context, job Job) (RunResult, error) {
	if _, err := ParseJob(string(job)); err != nil {
		return RunResult{}, err
	}
	return s.dispatch(context.WithoutCancel(ctx), job)
}

func (s *Scheduler) fire(job Job) func() {
	return func() {
		if _, err := s.dispatch(s.baseCtx, job); err != nil {
			if errors.Is(err, ErrJobRunning) {
				s.logger.Info("job skipped, previous run still active", "job", job)
				return
			}
			s.logger.Warn("scheduled job finished with errors", "job", job, "error", err)
		}
	}
}

// dispatch submits the run to the pool and waits for it, so cron's
// SkipIfStillRunning sees the real run duration.
func (s *Scheduler) dispatch(ctx context.Context, job Job) (RunResult, error) {
	release, ok, err := s.locker.TryLock(ctx, string(job), s.cfg.LockTTL)
	if err != nil {
		return RunResult{}, err
	}
	if !ok {
		return RunResult{}, fmt.Errorf("%s: %w", job, ErrJobRunning)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		release()
		return RunResult{}, fmt.Errorf("%s: %w", job, ErrStopped)
	}
	s.wg.Add(1)
	s.mu.Unlock()

	type outcome struct {
		result RunResult
		err    error
	}
	done := make(chan outcome, 1)

	submitErr := s.pool.Submit(func() {
		defer s.wg.Done()

		var (
			out     outcome
			catcher panics.Catcher
		)
		catcher.Try(func() {
			out.result, out.err = s.runner.Run(ctx, job)
		})
		release()
		if recovered := catcher.Recovered(); recovered != nil {
			out.err = recovered.AsError()
		}
		done <- out
	})
	if submitErr != nil {
		s.wg.Done()
		release()
		if errors.Is(submitErr, ants.ErrPoolOverload) {
			return RunResult{}, fmt.Errorf("%s: %w", job, ErrPoolBusy)
		}
		return RunResult{}, fmt.Errorf("submit %s job: %w", job, submitErr)
	}

	out := <-done
	return out.result, out.err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ValidateSpec reports whether spec is accepted by the scheduler's parser.
func ValidateSpec(spec string) error {
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}
