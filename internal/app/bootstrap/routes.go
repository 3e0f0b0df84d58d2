// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	attachmentsfeature "github.com/dalemusser/stratafolders/internal/app/features/attachments"
	categoriesfeature "github.com/dalemusser/stratafolders/internal/app/features/categories"
	errorsfeature "github.com/dalemusser/stratafolders/internal/app/features/errors"
	foldersfeature "github.com/dalemusser/stratafolders/internal/app/features/folders"
	healthfeature "github.com/dalemusser/stratafolders/internal/app/features/health"
	statsfeature "github.com/dalemusser/stratafolders/internal/app/features/stats"
	"github.com/dalemusser/stratafolders/internal/app/system/accesslog"
	"github.com/dalemusser/stratafolders/internal/app/system/apicors"
	"github.com/dalemusser/stratafolders/internal/app/system/auth"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed.
//
// Layout:
//   - /api/*          JSON API: optional API key, API CORS, no cookies
//   - /health, /ready, /readyz, /livez
//   - <storage_local_url>/*  raw blob bytes by storage name (local storage only)
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.Projects
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(accesslog.Middleware(logger, accesslog.DefaultExclude...))
	r.Use(chimw.Recoverer)

	// Outer bound on any request; handlers apply tighter per-operation budgets.
	r.Use(chimw.Timeout(timeouts.Transfer()))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// ─────────────────────────────────────────────────────────────────────────────
	// JSON API
	// ─────────────────────────────────────────────────────────────────────────────

	attachmentsHandler := attachmentsfeature.NewHandler(svc.Attachments, errLog, appCfg.MaxUploadBytes, logger)
	foldersHandler := foldersfeature.NewHandler(svc, errLog, logger)
	categoriesHandler := categoriesfeature.NewHandler(svc.Categories, errLog, logger)
	statsHandler := statsfeature.NewHandler(svc, errLog, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(apicors.Middleware(appCfg.CORSAllowedOrigins))
		r.Use(auth.APIKeyAuth(appCfg.APIKey, logger))

		r.Mount("/folders", foldersfeature.Routes(foldersHandler, attachmentsfeature.FolderRoutes(attachmentsHandler)))
		r.Mount("/files", attachmentsfeature.Routes(attachmentsHandler))
		r.Mount("/categories", categoriesfeature.Routes(categoriesHandler))
		r.Mount("/stats", statsfeature.Routes(statsHandler))
	})

	// Health check endpoints for load balancers and orchestrators
	storageType := storageLabel(appCfg.StorageType)
	var storageProbe healthfeature.Probe
	if storageType == "local" {
		storageProbe = healthfeature.DirProbe(appCfg.StorageLocalPath)
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, storageType, storageProbe, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Blob bytes by storage name (local storage only; S3 serves its own URLs)
	if storageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	return r, nil
}

func storageLabel(t string) string {
	if t == "" {
		return "local"
	}
	return t
}
