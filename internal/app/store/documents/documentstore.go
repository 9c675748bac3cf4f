// internal/app/store/documents/documentstore.go
package documentstore

import (
	"context"
	"time"

	"github.com/umunna-dev/umunna/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("documents")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.DocumentRecord, error) {
	var d models.DocumentRecord
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.DocumentRecord{}, err
	}
	return d, nil
}

func (s *Store) Create(ctx context.Context, d models.DocumentRecord) (models.DocumentRecord, error) {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.DocumentRecord{}, err
	}
	return d, nil
}

// ListByPerson returns a person's documents, newest first.
func (s *Store) ListByPerson(ctx context.Context, personID primitive.ObjectID) ([]models.DocumentRecord, error) {
	cur, err := s.c.Find(ctx, bson.M{"person_id": personID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.DocumentRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
