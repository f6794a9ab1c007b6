package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/tonttery/internal/config"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/shopspring/decimal"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                 config.EnvDev,
		ServiceName:            "tonttery-api-test",
		HTTPAddr:               ":0",
		InternalJobToken:       "secret",
		DBSeedClients:          true,
		CommissionPercent:      10,
		EntryFee:               decimal.NewFromInt(100),
		CacheEnabled:           true,
		CacheExpireAfterAccess: time.Hour,
		SchedulerCreateCron:    "@midnight",
		SchedulerAwardCron:     "@midnight",
		SchedulerOverviewCron:  "0 0 18 * * *",
		SchedulerWorkers:       2,
		SchedulerLockTTL:       time.Minute,
		MetricsEnabled:         true,
	}
}

func TestNew_RequiresHTTPAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty HTTP addr")
	}
}

func TestNew_RejectsInvalidCommission(t *testing.T) {
	cfg := memoryConfig()
	cfg.CommissionPercent = 100

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for commission outside [1,99]")
	}
}

func TestNew_MemoryStoreServesTriggeredJobs(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})

	handler := a.Server().Handler

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/create", nil)
	req.Header.Set("X-Internal-Job-Token", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("trigger create: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lotteries", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list lotteries: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"DAILY"`) {
		t.Fatalf("expected a daily lottery after the create job, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clients/7b0f3a52-5d8f-4a55-9d0b-0c3f1f3b1a01", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected seeded client, got %d", rec.Code)
	}
}
