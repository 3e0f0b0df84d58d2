// Package apicors provides CORS middleware for the JSON API.
//
// The API authenticates with an optional static key header, never with
// cookies, so credentials are not allowed and any origin may be opened up.
package apicors

import (
	"net/http"

	"github.com/go-chi/cors"
)

var (
	allowedMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodDelete, http.MethodOptions,
	}
	allowedHeaders = []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"}
	exposedHeaders = []string{"Content-Disposition", "X-Request-ID"}
)

// Middleware returns CORS middleware for the given origins. An empty list
// (or a list containing "*") allows any origin.
//
// Usage in routes.go:
//
//	r.Route("/api", func(r chi.Router) {
//	    r.Use(apicors.Middleware(appCfg.CORSAllowedOrigins))
//	    r.Use(auth.APIKeyAuth(appCfg.APIKey, logger))
//	    ...
//	})
func Middleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: false,
		MaxAge:           86400,
	})
}
