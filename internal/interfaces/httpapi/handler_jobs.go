package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/tonttery/internal/scheduler"
	"github.com/riskibarqy/tonttery/internal/usecase"
)

// RunJob triggers a scheduler job. Per-type failures still return the run
// result so the caller can see which types succeeded.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	job, err := scheduler.ParseJob(r.PathValue("job"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobs.Trigger(ctx, job)
	if err != nil && result.RunID == "" {
		h.logger.WarnContext(ctx, "trigger job failed", "job", job, "error", err)
		writeError(ctx, w, err)
		return
	}
	if err != nil {
		h.logger.WarnContext(ctx, "triggered job finished with errors", "job", job, "run_id", result.RunID, "error", err)
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
