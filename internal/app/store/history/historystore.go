// internal/app/store/history/historystore.go
package historystore

import (
	"context"

	"github.com/umunna-dev/umunna/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the append-only edit history. There is deliberately no
// update or delete method: entries are write-once.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("edit_history")}
}

// Append writes one history entry.
func (s *Store) Append(ctx context.Context, e models.EditHistory) (models.EditHistory, error) {
	e.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.EditHistory{}, err
	}
	return e, nil
}

// ListByPerson returns a person's history, most recently approved first.
func (s *Store) ListByPerson(ctx context.Context, personID primitive.ObjectID, limit int64) ([]models.EditHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "approved_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"person_id": personID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.EditHistory
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
