package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/tonttery/external/telegram"
	"github.com/riskibarqy/tonttery/internal/config"
	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/domain/jobrun"
	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/riskibarqy/tonttery/internal/domain/prize"
	"github.com/riskibarqy/tonttery/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tonttery/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/tonttery/internal/interfaces/httpapi"
	"github.com/riskibarqy/tonttery/internal/platform/cache"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/riskibarqy/tonttery/internal/platform/metrics"
	"github.com/riskibarqy/tonttery/internal/platform/resilience"
	"github.com/riskibarqy/tonttery/internal/scheduler"
	"github.com/riskibarqy/tonttery/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const dbPingTimeout = 5 * time.Second

// App holds the wired HTTP server and scheduler plus everything they close over.
type App struct {
	cfg       config.Config
	logger    *logging.Logger
	server    *http.Server
	scheduler *scheduler.Scheduler
	closers   []func() error
}

type stores struct {
	lotteries lottery.Repository
	clients   client.Repository
	runs      jobrun.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}

	st, err := a.openStores(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	calc, err := prize.NewCalculator(cfg.CommissionPercent)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("build prize calculator: %w", err)
	}

	service := usecase.NewLotteryService(
		st.lotteries,
		st.clients,
		lottery.NewSelector(nil),
		calc,
		nil,
		usecase.NewLoggingPaymentBridge(logger),
		usecase.LotteryServiceConfig{EntryFee: cfg.EntryFee},
		logger,
	)

	var lotteries usecase.LotteryAPI = service
	if cfg.CacheEnabled {
		lotteries = usecase.NewCachedLotteryService(service, cache.NewStore(cache.Options{
			ExpireAfterWrite:  cfg.CacheExpireAfterWrite,
			ExpireAfterAccess: cfg.CacheExpireAfterAccess,
		}))
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	notifier := usecase.NewNotificationService(a.messenger(), usecase.NotificationConfig{
		ChannelID: cfg.TelegramChannelID,
	}, logger)

	runner := scheduler.NewRunner(lotteries, notifier, st.runs, m, logger)
	locker, err := a.locker()
	if err != nil {
		a.close()
		return nil, err
	}

	sched, err := scheduler.New(runner, locker, scheduler.Config{
		CreateSpec:   cfg.SchedulerCreateCron,
		AwardSpec:    cfg.SchedulerAwardCron,
		OverviewSpec: cfg.SchedulerOverviewCron,
		Workers:      cfg.SchedulerWorkers,
		LockTTL:      cfg.SchedulerLockTTL,
	}, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	a.scheduler = sched

	handler := httpapi.NewHandler(lotteries, sched, logger)
	router := httpapi.NewRouter(handler, m, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	a.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return a, nil
}

// Server exposes the HTTP server so callers own the listen loop.
func (a *App) Server() *http.Server {
	return a.server
}

// Start begins cron scheduling when enabled. Manual triggers work either way.
func (a *App) Start() {
	if !a.cfg.SchedulerEnabled {
		a.logger.Info("scheduler disabled, internal job triggers only")
		return
	}
	a.scheduler.Start()
}

// Shutdown drains the HTTP server, waits for in-flight jobs and releases the
// store and lock connections.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.scheduler.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	if a.cfg.DBURL == "" {
		a.logger.Warn("DB_URL not set, using in-memory store")
		var seed []client.Client
		if a.cfg.DBSeedClients {
			seed = memory.SeedClients()
		}
		lotteries := memory.NewLotteryRepository(nil)
		return stores{
			lotteries: lotteries,
			clients:   memory.NewClientRepository(seed, lotteries),
		}, nil
	}

	db, err := openDB(ctx, a.cfg)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, db.Close)

	var breaker *resilience.CircuitBreaker
	if a.cfg.StoreCircuit.Enabled {
		breaker = resilience.NewCircuitBreaker(
			a.cfg.StoreCircuit.FailureThreshold,
			a.cfg.StoreCircuit.OpenTimeout,
			a.cfg.StoreCircuit.HalfOpenMaxReq,
		)
	}
	guard := postgres.NewGuard(a.cfg.StoreTimeout, breaker)

	if a.cfg.DBSeedClients {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			return stores{}, fmt.Errorf("seed clients: %w", err)
		}
		a.logger.Info("seeded demo clients")
	}

	return stores{
		lotteries: postgres.NewLotteryRepository(db, guard),
		clients:   postgres.NewClientRepository(db, guard),
		runs:      postgres.NewJobRunRepository(db, guard),
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (a *App) messenger() usecase.Messenger {
	if !a.cfg.TelegramEnabled {
		return nil
	}
	return telegram.NewClient(telegram.ClientConfig{
		BaseURL:        a.cfg.TelegramBaseURL,
		Token:          a.cfg.TelegramBotToken,
		Timeout:        a.cfg.TelegramTimeout,
		MaxRetries:     a.cfg.TelegramRetries,
		Logger:         a.logger,
		CircuitBreaker: a.cfg.TelegramCircuit,
	})
}

func (a *App) locker() (scheduler.Locker, error) {
	if a.cfg.RedisURL == "" {
		return scheduler.NewLocalLocker(), nil
	}
	locker, err := scheduler.NewRedisLockerFromURL(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("build redis locker: %w", err)
	}
	a.closers = append(a.closers, locker.Close)
	return locker, nil
}
