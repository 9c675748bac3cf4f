// internal/app/store/relationships/relationshipstore.go
package relationshipstore

import (
	"context"
	"errors"
	"time"

	"github.com/umunna-dev/umunna/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages both edge collections: directed parent-child edges and
// canonical undirected spouse edges.
type Store struct {
	rels     *mongo.Collection
	spousals *mongo.Collection
}

var (
	// ErrSelfRelationship rejects edges from a person to themselves.
	ErrSelfRelationship = errors.New("a person cannot be their own parent or spouse")

	ErrDuplicateRelationship = errors.New("this relationship already exists")

	ErrBadMaritalStatus = errors.New(`marital status must be "married", "divorced", "widowed", or "separated"`)
)

func New(db *mongo.Database) *Store {
	return &Store{
		rels:     db.Collection("relationships"),
		spousals: db.Collection("spousal_relationships"),
	}
}

// AddParentChild creates one directed parent-child edge.
func (s *Store) AddParentChild(ctx context.Context, familyID, parentID, childID primitive.ObjectID) (models.Relationship, error) {
	if parentID == childID {
		return models.Relationship{}, ErrSelfRelationship
	}
	r := models.Relationship{
		ID:        primitive.NewObjectID(),
		FamilyID:  familyID,
		ParentID:  parentID,
		ChildID:   childID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.rels.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Relationship{}, ErrDuplicateRelationship
		}
		return models.Relationship{}, err
	}
	return r, nil
}

// ParentsOf returns the parent edges of a child, in insertion order.
func (s *Store) ParentsOf(ctx context.Context, childID primitive.ObjectID) ([]models.Relationship, error) {
	return s.findRels(ctx, bson.M{"child_id": childID})
}

// ChildrenOf returns the child edges of a parent, in insertion order.
func (s *Store) ChildrenOf(ctx context.Context, parentID primitive.ObjectID) ([]models.Relationship, error) {
	return s.findRels(ctx, bson.M{"parent_id": parentID})
}

// ListByFamily returns all parent-child edges in a family, in insertion order.
func (s *Store) ListByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.Relationship, error) {
	return s.findRels(ctx, bson.M{"family_id": familyID})
}

func (s *Store) findRels(ctx context.Context, filter bson.M) ([]models.Relationship, error) {
	cur, err := s.rels.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Relationship
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteParentChild removes one edge by id.
func (s *Store) DeleteParentChild(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.rels.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// canonicalPair orders a spouse pair so the same two people always
// store as the same document, whichever way the caller lists them.
func canonicalPair(a, b primitive.ObjectID) (primitive.ObjectID, primitive.ObjectID) {
	if b.Hex() < a.Hex() {
		return b, a
	}
	return a, b
}

func validMaritalStatus(status string) bool {
	switch status {
	case models.MaritalMarried, models.MaritalDivorced, models.MaritalWidowed, models.MaritalSeparated:
		return true
	}
	return false
}

// AddSpousal creates one undirected spouse edge. The pair is stored in
// canonical order, so the caller may pass the spouses either way round.
func (s *Store) AddSpousal(ctx context.Context, familyID, spouse1, spouse2 primitive.ObjectID, status string) (models.SpousalRelationship, error) {
	if spouse1 == spouse2 {
		return models.SpousalRelationship{}, ErrSelfRelationship
	}
	if !validMaritalStatus(status) {
		return models.SpousalRelationship{}, ErrBadMaritalStatus
	}
	s1, s2 := canonicalPair(spouse1, spouse2)
	r := models.SpousalRelationship{
		ID:            primitive.NewObjectID(),
		FamilyID:      familyID,
		Spouse1ID:     s1,
		Spouse2ID:     s2,
		MaritalStatus: status,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.spousals.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.SpousalRelationship{}, ErrDuplicateRelationship
		}
		return models.SpousalRelationship{}, err
	}
	return r, nil
}

// SpousesOf returns every spouse edge touching a person. One query
// covers both endpoints because the pair is stored canonically.
func (s *Store) SpousesOf(ctx context.Context, personID primitive.ObjectID) ([]models.SpousalRelationship, error) {
	return s.findSpousals(ctx, bson.M{"$or": bson.A{
		bson.M{"spouse1_id": personID},
		bson.M{"spouse2_id": personID},
	}})
}

// ListSpousalByFamily returns all spouse edges in a family, in insertion order.
func (s *Store) ListSpousalByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.SpousalRelationship, error) {
	return s.findSpousals(ctx, bson.M{"family_id": familyID})
}

func (s *Store) findSpousals(ctx context.Context, filter bson.M) ([]models.SpousalRelationship, error) {
	cur, err := s.spousals.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SpousalRelationship
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMaritalStatus changes the status on an existing spouse edge.
func (s *Store) UpdateMaritalStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !validMaritalStatus(status) {
		return ErrBadMaritalStatus
	}
	res, err := s.spousals.UpdateByID(ctx, id, bson.M{"$set": bson.M{"marital_status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteSpousal removes one spouse edge by id.
func (s *Store) DeleteSpousal(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.spousals.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByFamily removes all edges in a family from both collections.
func (s *Store) DeleteByFamily(ctx context.Context, familyID primitive.ObjectID) (int64, error) {
	var deleted int64
	res, err := s.rels.DeleteMany(ctx, bson.M{"family_id": familyID})
	if err != nil {
		return deleted, err
	}
	deleted += res.DeletedCount
	res, err = s.spousals.DeleteMany(ctx, bson.M{"family_id": familyID})
	if err != nil {
		return deleted, err
	}
	return deleted + res.DeletedCount, nil
}
