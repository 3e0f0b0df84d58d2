// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires this app into the WAFFLE lifecycle. app.Run calls them in
// order: config, validation, connections, schema, startup, handler, and
// finally graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "stratafolders", // used only for logging/diagnostics
	LoadConfig:     LoadConfig,      // load core + app config
	ValidateConfig: ValidateConfig,  // MongoDB URI, storage, upload limit
	ConnectDB:      ConnectDB,       // MongoDB, blob storage, projects core
	EnsureSchema:   EnsureSchema,    // validators, indexes, code sequence
	Startup:        Startup,         // timeouts from env
	BuildHandler:   BuildHandler,    // router + middleware stack
	Shutdown:       Shutdown,        // disconnect MongoDB
}
