// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports,
// TLS, logging level, request limits); AppConfig carries everything
// specific to this application: connection strings, the blob store,
// and the event bus.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Blob storage (S3-compatible) for uploaded documents
	BlobEndpoint  string // host:port of the S3-compatible endpoint
	BlobAccessKey string
	BlobSecretKey string
	BlobBucket    string
	BlobUseSSL    bool

	// NATS event publishing. Blank disables eventing.
	NATSURL string
}
