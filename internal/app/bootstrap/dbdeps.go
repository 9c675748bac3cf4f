// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/umunna-dev/umunna/internal/app/events"
	"github.com/umunna-dev/umunna/internal/app/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. Blobs and
// Events are nil when their backends are not configured; the features
// that use them degrade accordingly.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Blobs         *storage.BlobStore
	Events        *events.Publisher
}
