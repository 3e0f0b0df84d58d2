// internal/app/features/health/health.go
package health

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dalemusser/stratafolders/internal/app/system/jsonutil"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

// DirProbe checks that dir exists and is a directory. It is the probe for
// local blob storage.
func DirProbe(dir string) Probe {
	return func(context.Context) error {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
}

// Handler serves liveness, readiness and the full dependency report.
type Handler struct {
	mongoClient  *mongo.Client
	storageType  string
	storageProbe Probe
	logger       *zap.Logger
}

// NewHandler creates a Handler. storageProbe may be nil when the backend has
// no cheap check (S3); storage is then reported as its type only.
func NewHandler(mongoClient *mongo.Client, storageType string, storageProbe Probe, logger *zap.Logger) *Handler {
	return &Handler{
		mongoClient:  mongoClient,
		storageType:  storageType,
		storageProbe: storageProbe,
		logger:       logger,
	}
}

// Response is the body of every health endpoint.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes provides /health (full check), /health/ready and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the probe paths orchestrators expect at the root:
// /ready, /readyz and /livez.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

func (h *Handler) pingMongo(ctx context.Context) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), h.logger, "health.ping")
	defer cancel()
	return h.mongoClient.Ping(ctx, readpref.Primary())
}

func (h *Handler) probeStorage(ctx context.Context) error {
	if h.storageProbe == nil {
		return nil
	}
	return h.storageProbe(ctx)
}

// Check reports MongoDB and blob storage separately. Any failure answers 503.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{Status: "ok", Services: map[string]string{}}

	if err := h.pingMongo(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Services["mongodb"] = "unavailable"
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
	} else {
		resp.Services["mongodb"] = "ok"
	}

	if err := h.probeStorage(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Services["storage"] = h.storageType + ": unavailable"
		h.logger.Warn("health check: blob storage probe failed",
			zap.String("storage", h.storageType),
			zap.Error(err))
	} else {
		resp.Services["storage"] = h.storageType
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	jsonutil.JSON(w, code, resp)
}

// Ready answers 200 once both MongoDB and blob storage respond.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	err := h.pingMongo(r.Context())
	if err == nil {
		err = h.probeStorage(r.Context())
	}
	if err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, Response{Status: "not ready"})
		return
	}
	jsonutil.OK(w, Response{Status: "ready"})
}

// Live answers 200 while the process serves HTTP at all.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, Response{Status: "alive"})
}
