package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/ricirt/devlog-poster/internal/api/middleware"
	"github.com/ricirt/devlog-poster/internal/service"
)

// Runner runs the daily workflow once; *service.DailyPoster satisfies it.
type Runner interface {
	RunOnce(ctx context.Context) service.RunResult
}

// TriggerHandler runs the daily workflow on demand.
type TriggerHandler struct {
	runner Runner
	logger *zap.Logger
}

func NewTriggerHandler(runner Runner, logger *zap.Logger) *TriggerHandler {
	return &TriggerHandler{runner: runner, logger: logger}
}

// RunDaily handles GET|POST /run-daily
//
// The run is synchronous. The acknowledgement does not depend on the
// outcome; failures only show up in logs and metrics.
//
// @Summary  Run the daily job now
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  429  {object}  map[string]string
// @Router   /run-daily [get]
func (h *TriggerHandler) RunDaily(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("manual run requested",
		apimw.CorrelationField(r.Context()),
	)

	res := h.runner.RunOnce(r.Context())

	fields := []zap.Field{
		apimw.CorrelationField(r.Context()),
		zap.String("outcome", string(res.Outcome)),
		zap.Duration("duration", res.Duration),
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}
	h.logger.Info("manual run finished", fields...)

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Daily job executed manually",
	})
}
