// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// ports, TLS, logging, CORS and body limits; AppConfig covers the folder
// service itself.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// API key for /api/* (Bearer token). Empty leaves the API open.
	APIKey string

	// Origins allowed to call /api/* from a browser. Empty allows any.
	CORSAllowedOrigins []string

	// Blob storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage directory (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local blobs (e.g., "/uploads")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "attachments/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Uploads
	MaxUploadBytes int64 // Largest accepted upload request body

	// Orphan sweep
	SweepGracePeriod time.Duration // Blobs younger than this are never reclaimed
	SweepInterval    time.Duration // In-process sweep period; 0 leaves it to cmd/blobsweep
	SweepDryRun      bool          // blobsweep only: list orphans, remove nothing
}
