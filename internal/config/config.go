package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/prize"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/riskibarqy/tonttery/internal/platform/resilience"
	"github.com/riskibarqy/tonttery/internal/scheduler"
	"github.com/shopspring/decimal"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	InternalJobToken   string

	// DBURL empty selects the in-memory store.
	DBURL                   string
	DBDisablePreparedBinary bool
	DBMaxOpenConns          int
	DBSeedClients           bool
	StoreTimeout            time.Duration
	StoreCircuit            resilience.CircuitBreakerConfig

	CommissionPercent int
	EntryFee          decimal.Decimal

	CacheEnabled           bool
	CacheExpireAfterAccess time.Duration
	CacheExpireAfterWrite  time.Duration

	SchedulerEnabled      bool
	SchedulerCreateCron   string
	SchedulerAwardCron    string
	SchedulerOverviewCron string
	SchedulerWorkers      int
	SchedulerLockTTL      time.Duration
	RedisURL              string

	TelegramEnabled   bool
	TelegramBaseURL   string
	TelegramBotToken  string
	TelegramChannelID string
	TelegramTimeout   time.Duration
	TelegramRetries   int
	TelegramCircuit   resilience.CircuitBreakerConfig

	MetricsEnabled             bool
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        strings.TrimSpace(getEnv("APP_SERVICE_NAME", "tonttery-api")),
		ServiceVersion:     strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		HTTPAddr:           strings.TrimSpace(getEnv("APP_HTTP_ADDR", ":8080")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		RedisURL:           strings.TrimSpace(getEnv("REDIS_URL", "")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	swaggerDefault := "true"
	seedDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
		seedDefault = "false"
	}
	if cfg.SwaggerEnabled, err = getEnvAsBool("SWAGGER_ENABLED", swaggerDefault); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	if err := loadStore(&cfg, seedDefault); err != nil {
		return Config{}, err
	}
	if err := loadLottery(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadCache(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadScheduler(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadTelegram(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadStore(cfg *Config, seedDefault string) error {
	var err error
	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", "true"); err != nil {
		return err
	}
	if cfg.DBSeedClients, err = getEnvAsBool("DB_SEED_CLIENTS", seedDefault); err != nil {
		return err
	}
	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}
	if cfg.StoreTimeout, err = getEnvAsPositiveDuration("STORE_TIMEOUT", "3s"); err != nil {
		return err
	}
	cfg.StoreCircuit, err = loadCircuit("STORE")
	return err
}

func loadLottery(cfg *Config) error {
	var err error
	if cfg.CommissionPercent, err = getEnvAsInt("LOTTERY_COMMISSION_PERCENTAGE", 10); err != nil {
		return fmt.Errorf("parse LOTTERY_COMMISSION_PERCENTAGE: %w", err)
	}
	if err := prize.ValidateCommission(cfg.CommissionPercent); err != nil {
		return fmt.Errorf("LOTTERY_COMMISSION_PERCENTAGE: %w", err)
	}

	if cfg.EntryFee, err = decimal.NewFromString(strings.TrimSpace(getEnv("LOTTERY_ENTRY_FEE", "100"))); err != nil {
		return fmt.Errorf("parse LOTTERY_ENTRY_FEE: %w", err)
	}
	if !cfg.EntryFee.IsPositive() {
		return fmt.Errorf("LOTTERY_ENTRY_FEE must be > 0")
	}
	return nil
}

func loadCache(cfg *Config) error {
	var err error
	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", "true"); err != nil {
		return err
	}
	if cfg.CacheExpireAfterAccess, err = getEnvAsNonNegativeDuration("CACHE_EXPIRE_AFTER_ACCESS", "24h"); err != nil {
		return err
	}
	if cfg.CacheExpireAfterWrite, err = getEnvAsNonNegativeDuration("CACHE_EXPIRE_AFTER_WRITE", "0s"); err != nil {
		return err
	}
	return nil
}

func loadScheduler(cfg *Config) error {
	defaults := scheduler.DefaultConfig()

	var err error
	if cfg.SchedulerEnabled, err = getEnvAsBool("SCHEDULER_ENABLED", "true"); err != nil {
		return err
	}

	specs := []struct {
		key    string
		target *string
		value  string
	}{
		{key: "SCHEDULER_CREATE_CRON", target: &cfg.SchedulerCreateCron, value: defaults.CreateSpec},
		{key: "SCHEDULER_AWARD_CRON", target: &cfg.SchedulerAwardCron, value: defaults.AwardSpec},
		{key: "SCHEDULER_OVERVIEW_CRON", target: &cfg.SchedulerOverviewCron, value: defaults.OverviewSpec},
	}
	for _, spec := range specs {
		value := strings.TrimSpace(getEnv(spec.key, spec.value))
		if err := scheduler.ValidateSpec(value); err != nil {
			return fmt.Errorf("%s: %w", spec.key, err)
		}
		*spec.target = value
	}

	if cfg.SchedulerWorkers, err = getEnvAsInt("SCHEDULER_WORKERS", defaults.Workers); err != nil {
		return fmt.Errorf("parse SCHEDULER_WORKERS: %w", err)
	}
	if cfg.SchedulerWorkers < 1 {
		return fmt.Errorf("SCHEDULER_WORKERS must be >= 1")
	}
	if cfg.SchedulerLockTTL, err = getEnvAsPositiveDuration("SCHEDULER_LOCK_TTL", defaults.LockTTL.String()); err != nil {
		return err
	}
	return nil
}

func loadTelegram(cfg *Config) error {
	var err error
	if cfg.TelegramEnabled, err = getEnvAsBool("TELEGRAM_ENABLED", "false"); err != nil {
		return err
	}
	cfg.TelegramBaseURL = strings.TrimSpace(getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"))
	cfg.TelegramBotToken = strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", ""))
	cfg.TelegramChannelID = strings.TrimSpace(getEnv("TELEGRAM_CHANNEL_ID", ""))
	if cfg.TelegramEnabled {
		if cfg.TelegramBotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required when TELEGRAM_ENABLED=true")
		}
		if cfg.TelegramChannelID == "" {
			return fmt.Errorf("TELEGRAM_CHANNEL_ID is required when TELEGRAM_ENABLED=true")
		}
	}

	if cfg.TelegramTimeout, err = getEnvAsPositiveDuration("TELEGRAM_TIMEOUT", "5s"); err != nil {
		return err
	}
	if cfg.TelegramRetries, err = getEnvAsInt("TELEGRAM_RETRIES", 2); err != nil {
		return fmt.Errorf("parse TELEGRAM_RETRIES: %w", err)
	}
	if cfg.TelegramRetries < 0 {
		return fmt.Errorf("TELEGRAM_RETRIES must be >= 0")
	}
	cfg.TelegramCircuit, err = loadCircuit("TELEGRAM")
	return err
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.MetricsEnabled, err = getEnvAsBool("METRICS_ENABLED", "true"); err != nil {
		return err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", "false"); err != nil {
		return err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", "false"); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", "false"); err != nil {
		return err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	return nil
}

// loadCircuit reads <PREFIX>_CIRCUIT_{ENABLED,FAILURE_COUNT,OPEN_TIMEOUT,HALF_OPEN_MAX_REQ}.
func loadCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()
	out := resilience.CircuitBreakerConfig{}

	var err error
	if out.Enabled, err = getEnvAsBool(prefix+"_CIRCUIT_ENABLED", strconv.FormatBool(defaults.Enabled)); err != nil {
		return out, err
	}
	if out.FailureThreshold, err = getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", defaults.FailureThreshold); err != nil {
		return out, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if out.FailureThreshold < 1 {
		return out, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	if out.OpenTimeout, err = getEnvAsPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout.String()); err != nil {
		return out, err
	}
	if out.HalfOpenMaxReq, err = getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", defaults.HalfOpenMaxReq); err != nil {
		return out, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if out.HalfOpenMaxReq < 1 {
		return out, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func getEnvAsNonNegativeDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out < 0 {
		return 0, fmt.Errorf("%s must be >= 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
