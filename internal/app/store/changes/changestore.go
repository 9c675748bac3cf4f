// internal/app/store/changes/changestore.go
package changestore

import (
	"context"
	"time"

	"github.com/umunna-dev/umunna/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages pending-change proposals. Status transitions happen
// only through the workflow service; nothing here re-checks the current
// status before writing, which is what lets an approval cascade
// overwrite a record that is already terminal.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("pending_changes")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.PendingChange, error) {
	var pc models.PendingChange
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&pc); err != nil {
		return models.PendingChange{}, err
	}
	return pc, nil
}

// Insert persists a new proposal. Status and conflict list are expected
// to be set by the caller (the workflow service).
func (s *Store) Insert(ctx context.Context, pc models.PendingChange) (models.PendingChange, error) {
	pc.ID = primitive.NewObjectID()
	pc.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, pc); err != nil {
		return models.PendingChange{}, err
	}
	return pc, nil
}

// ListPendingByPerson returns a person's pending proposals, newest first.
func (s *Store) ListPendingByPerson(ctx context.Context, personID primitive.ObjectID) ([]models.PendingChange, error) {
	return s.find(ctx, bson.M{
		"person_id": personID,
		"status":    models.ChangePending,
	})
}

// AddConflictRefs pushes id onto the conflict lists of the given
// proposals. Insertion is set-wise, so repeating a ref is harmless.
func (s *Store) AddConflictRefs(ctx context.Context, ids []primitive.ObjectID, id primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$addToSet": bson.M{"conflicts_with": id}})
	return err
}

// ListByFamily returns every proposal in a family regardless of status,
// newest first.
func (s *Store) ListByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.PendingChange, error) {
	return s.find(ctx, bson.M{"family_id": familyID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.PendingChange, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PendingChange
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkApproved transitions a proposal to approved.
func (s *Store) MarkApproved(ctx context.Context, id, approverID primitive.ObjectID, notes string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":         models.ChangeApproved,
		"resolved_by":    approverID,
		"approval_notes": notes,
		"resolved_at":    now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkRejected transitions a proposal to rejected. It writes
// unconditionally: a cascade rejection will overwrite an
// already-approved or already-rejected record.
func (s *Store) MarkRejected(ctx context.Context, id, rejectorID primitive.ObjectID, reason string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":           models.ChangeRejected,
		"resolved_by":      rejectorID,
		"rejection_reason": reason,
		"resolved_at":      now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
