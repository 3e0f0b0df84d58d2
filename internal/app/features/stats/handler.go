// Package stats serves the folder status summary.
package stats

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratafolders/internal/app/features/errors"
	"github.com/dalemusser/stratafolders/internal/app/system/jsonutil"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	"github.com/dalemusser/stratafolders/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Summarizer computes the status summary. *projects.Service satisfies it.
type Summarizer interface {
	StatsSummary(ctx context.Context) (models.Stats, error)
}

// Handler serves GET /api/stats.
type Handler struct {
	svc    Summarizer
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new stats Handler.
func NewHandler(svc Summarizer, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, errLog: errLog, logger: logger}
}

// Routes returns a router with the stats endpoint.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.summary)
	return r
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.logger, "stats.summary")
	defer cancel()

	st, err := h.svc.StatsSummary(ctx)
	if err != nil {
		h.errLog.Respond(w, r, "stats summary failed", err)
		return
	}
	jsonutil.OK(w, st)
}
