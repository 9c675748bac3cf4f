// internal/app/store/persons/personstore.go
package personstore

import (
	"context"
	"regexp"
	"time"

	"github.com/umunna-dev/umunna/internal/domain/models"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages person records. Delete also removes the relationship
// records referencing the person, so it holds the edge collections too.
type Store struct {
	c        *mongo.Collection
	rels     *mongo.Collection
	spousals *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("persons"),
		rels:     db.Collection("relationships"),
		spousals: db.Collection("spousal_relationships"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Person, error) {
	var p models.Person
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Person{}, err
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, p models.Person) (models.Person, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.FullNameCI = text.Fold(p.FullName)
	if p.VerificationStatus == "" {
		p.VerificationStatus = models.VerificationUnverified
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Person{}, err
	}
	return p, nil
}

// Update is a direct (non-workflow) profile edit. Only non-nil fields
// are written.
type Update struct {
	FullName           *string
	Gender             *string
	DateOfBirth        *string
	DateOfDeath        *string
	PlaceOfBirth       *string
	PlaceOfDeath       *string
	Occupation         *string
	Biography          *string
	ClanName           *string
	VillageOrigin      *string
	IsAlive            *bool
	VerificationStatus *string
	ProfilePhotoRef    *string
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update, editorID primitive.ObjectID) error {
	set := bson.M{
		"updated_at":     time.Now().UTC(),
		"last_edited_by": editorID,
	}
	if upd.FullName != nil {
		set["full_name"] = *upd.FullName
		set["full_name_ci"] = text.Fold(*upd.FullName)
	}
	assign := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	assign("gender", upd.Gender)
	assign("date_of_birth", upd.DateOfBirth)
	assign("date_of_death", upd.DateOfDeath)
	assign("place_of_birth", upd.PlaceOfBirth)
	assign("place_of_death", upd.PlaceOfDeath)
	assign("occupation", upd.Occupation)
	assign("biography", upd.Biography)
	assign("clan_name", upd.ClanName)
	assign("village_origin", upd.VillageOrigin)
	assign("verification_status", upd.VerificationStatus)
	assign("profile_photo_ref", upd.ProfilePhotoRef)
	if upd.IsAlive != nil {
		set["is_alive"] = *upd.IsAlive
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyFieldValues writes approved change values onto the person,
// keyed by field name as stored in a PendingChange diff. The folded
// name field is kept in sync when full_name changes.
func (s *Store) ApplyFieldValues(ctx context.Context, id primitive.ObjectID, fields map[string]string, editorID primitive.ObjectID) error {
	set := bson.M{
		"updated_at":     time.Now().UTC(),
		"last_edited_by": editorID,
	}
	for field, value := range fields {
		set[field] = value
		if field == "full_name" {
			set["full_name_ci"] = text.Fold(value)
		}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByFamily returns a family's persons, alphabetically by folded name.
func (s *Store) ListByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.Person, error) {
	cur, err := s.c.Find(ctx, bson.M{"family_id": familyID},
		options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Person
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByName returns persons in a family whose folded name contains
// the folded query. The query is matched literally; regex
// metacharacters in it are escaped.
func (s *Store) SearchByName(ctx context.Context, familyID primitive.ObjectID, query string) ([]models.Person, error) {
	filter := bson.M{
		"family_id":    familyID,
		"full_name_ci": bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(query))}},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Person
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a person and every relationship record referencing it.
// The deletes are separate operations, not a transaction: a failure
// part-way leaves orphaned edges for a retry to clean up.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if _, err := s.rels.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"parent_id": id},
		bson.M{"child_id": id},
	}}); err != nil {
		return res.DeletedCount, err
	}
	if _, err := s.spousals.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"spouse1_id": id},
		bson.M{"spouse2_id": id},
	}}); err != nil {
		return res.DeletedCount, err
	}
	return res.DeletedCount, nil
}

// DeleteByFamily removes all persons in a family. Edge cleanup is the
// caller's concern (family deletion removes the edge collections' rows
// by family id).
func (s *Store) DeleteByFamily(ctx context.Context, familyID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"family_id": familyID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByFamily returns the number of persons in a family.
func (s *Store) CountByFamily(ctx context.Context, familyID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"family_id": familyID})
}
