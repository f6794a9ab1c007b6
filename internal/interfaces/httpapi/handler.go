package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/riskibarqy/tonttery/internal/scheduler"
	"github.com/riskibarqy/tonttery/internal/usecase"
)

const (
	cacheControlClient = "max-age=86400"
	cacheControlNone   = "no-cache"
)

// JobTrigger runs a scheduler job on demand.
type JobTrigger interface {
	Trigger(ctx context.Context, job scheduler.Job) (scheduler.RunResult, error)
}

type Handler struct {
	lotteries usecase.LotteryAPI
	jobs      JobTrigger
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(lotteries usecase.LotteryAPI, jobs JobTrigger, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		lotteries: lotteries,
		jobs:      jobs,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
