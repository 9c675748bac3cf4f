// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Umunna.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, blob_endpoint, etc.
//   - Environment variables: UMUNNA_MONGO_URI, UMUNNA_BLOB_ENDPOINT, etc.
//   - Command-line flags: --mongo_uri, --blob_endpoint, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "umunna", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Blob storage for uploaded family documents
	{Name: "blob_endpoint", Default: "", Desc: "S3-compatible blob endpoint (host:port); blank disables document storage"},
	{Name: "blob_access_key", Default: "", Desc: "Blob store access key"},
	{Name: "blob_secret_key", Default: "", Desc: "Blob store secret key"},
	{Name: "blob_bucket", Default: "umunna-documents", Desc: "Blob store bucket name"},
	{Name: "blob_use_ssl", Default: false, Desc: "Use TLS for the blob endpoint"},

	// Event publishing
	{Name: "nats_url", Default: "", Desc: "NATS server URL for workflow events; blank disables eventing"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "UMUNNA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		BlobEndpoint:  appValues.String("blob_endpoint"),
		BlobAccessKey: appValues.String("blob_access_key"),
		BlobSecretKey: appValues.String("blob_secret_key"),
		BlobBucket:    appValues.String("blob_bucket"),
		BlobUseSSL:    appValues.Bool("blob_use_ssl"),

		NATSURL: appValues.String("nats_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Umunna validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and requires credentials when a
// blob endpoint is configured.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.BlobEndpoint != "" && (appCfg.BlobAccessKey == "" || appCfg.BlobSecretKey == "") {
		return fmt.Errorf("blob_endpoint is set but blob_access_key/blob_secret_key are not")
	}

	return nil
}
