// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/umunna-dev/umunna/internal/app/events"
	"github.com/umunna-dev/umunna/internal/app/storage"
	"github.com/umunna-dev/umunna/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the backend connections: MongoDB (required),
// the blob store and NATS (both optional, enabled by config).
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.BlobEndpoint != "" {
		blobs, err := storage.New(storage.Config{
			Endpoint:  appCfg.BlobEndpoint,
			AccessKey: appCfg.BlobAccessKey,
			SecretKey: appCfg.BlobSecretKey,
			Bucket:    appCfg.BlobBucket,
			UseSSL:    appCfg.BlobUseSSL,
		})
		if err != nil {
			return DBDeps{}, fmt.Errorf("blob store: %w", err)
		}
		deps.Blobs = blobs
		logger.Info("blob store configured",
			zap.String("endpoint", appCfg.BlobEndpoint),
			zap.String("bucket", appCfg.BlobBucket))
	} else {
		logger.Info("blob store not configured; document uploads disabled")
	}

	if appCfg.NATSURL != "" {
		pub, err := events.Connect(appCfg.NATSURL, logger)
		if err != nil {
			return DBDeps{}, fmt.Errorf("nats connect: %w", err)
		}
		deps.Events = pub
		logger.Info("event publishing enabled", zap.String("nats_url", appCfg.NATSURL))
	}

	return deps, nil
}

// EnsureSchema reconciles the index sets on every collection.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase)
}
