// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATAFOLDERS"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, storage_type, etc.
//   - Environment variables: STRATAFOLDERS_MONGO_URI, STRATAFOLDERS_STORAGE_TYPE, etc.
//   - Command-line flags: --mongo_uri, --storage_type, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratafolders", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// API access
	{Name: "api_key", Default: "", Desc: "Bearer API key for /api/* (leave empty for an open API)"},
	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated origins allowed to call /api/* (empty allows any)"},

	// Blob storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage directory for attachment blobs"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "URL prefix for serving local blobs"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "attachments/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Uploads
	{Name: "max_upload_size", Default: 32, Desc: "Maximum upload size in MB"},

	// Orphan sweep
	{Name: "sweep_grace_period", Default: "1h", Desc: "Minimum blob age before the sweeper may reclaim it"},
	{Name: "sweep_dry_run", Default: false, Desc: "blobsweep: report orphans without removing them"},
	{Name: "sweep_interval", Default: "0", Desc: "Run the orphan sweep in-process at this interval (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATAFOLDERS_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		APIKey:             appValues.String("api_key"),
		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		// Blob storage
		StorageType:      strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  strings.TrimRight(appValues.String("storage_local_url"), "/"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		MaxUploadBytes:   int64(appValues.Int("max_upload_size")) << 20,
		SweepGracePeriod: appValues.Duration("sweep_grace_period", time.Hour),
		SweepInterval:    appValues.Duration("sweep_interval", 0),
		SweepDryRun:      appValues.Bool("sweep_dry_run"),
	}

	return coreCfg, appCfg, nil
}

// splitList parses a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local", "":
		if strings.TrimSpace(appCfg.StorageLocalPath) == "" {
			return fmt.Errorf("storage_local_path is required for local storage")
		}
		if !strings.HasPrefix(appCfg.StorageLocalURL, "/") || appCfg.StorageLocalURL == "/api" {
			return fmt.Errorf("storage_local_url must be an absolute path outside /api, got %q", appCfg.StorageLocalURL)
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_s3_bucket and storage_s3_region are required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}

	if appCfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	if appCfg.SweepGracePeriod < 0 {
		return fmt.Errorf("sweep_grace_period must not be negative")
	}
	if appCfg.SweepInterval < 0 {
		return fmt.Errorf("sweep_interval must not be negative")
	}

	if appCfg.APIKey == "" {
		logger.Warn("api_key is empty; /api is open to any caller")
	}
	return nil
}
