package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateFamily creates a test family with the given name.
func (f *Fixtures) CreateFamily(ctx context.Context, name string) models.Family {
	f.t.Helper()

	now := time.Now().UTC()
	fam := models.Family{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test family",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("families").InsertOne(ctx, fam); err != nil {
		f.t.Fatalf("failed to create test family: %v", err)
	}
	return fam
}

// CreatePerson creates a test person in the given family.
func (f *Fixtures) CreatePerson(ctx context.Context, familyID primitive.ObjectID, fullName, gender string) models.Person {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Person{
		ID:                 primitive.NewObjectID(),
		FamilyID:           familyID,
		FullName:           fullName,
		FullNameCI:         text.Fold(fullName),
		Gender:             gender,
		IsAlive:            true,
		VerificationStatus: models.VerificationUnverified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := f.db.Collection("persons").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test person: %v", err)
	}
	return p
}

// CreatePersonWithDetails creates a test person with dates and origin fields set.
func (f *Fixtures) CreatePersonWithDetails(ctx context.Context, familyID primitive.ObjectID, p models.Person) models.Person {
	f.t.Helper()

	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.FamilyID = familyID
	p.FullNameCI = text.Fold(p.FullName)
	if p.VerificationStatus == "" {
		p.VerificationStatus = models.VerificationUnverified
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := f.db.Collection("persons").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test person: %v", err)
	}
	return p
}

// CreateParentChild creates a parent-child edge between two persons.
func (f *Fixtures) CreateParentChild(ctx context.Context, familyID, parentID, childID primitive.ObjectID) models.Relationship {
	f.t.Helper()

	r := models.Relationship{
		ID:        primitive.NewObjectID(),
		FamilyID:  familyID,
		ParentID:  parentID,
		ChildID:   childID,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("relationships").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test relationship: %v", err)
	}
	return r
}

// CreateSpousal creates a spouse edge between two persons. The pair is
// stored in canonical hex order, matching the store's convention.
func (f *Fixtures) CreateSpousal(ctx context.Context, familyID, spouse1, spouse2 primitive.ObjectID, status string) models.SpousalRelationship {
	f.t.Helper()

	if spouse2.Hex() < spouse1.Hex() {
		spouse1, spouse2 = spouse2, spouse1
	}
	if status == "" {
		status = models.MaritalMarried
	}
	r := models.SpousalRelationship{
		ID:            primitive.NewObjectID(),
		FamilyID:      familyID,
		Spouse1ID:     spouse1,
		Spouse2ID:     spouse2,
		MaritalStatus: status,
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := f.db.Collection("spousal_relationships").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test spousal relationship: %v", err)
	}
	return r
}

// CreatePendingChange creates a pending proposal on a person.
func (f *Fixtures) CreatePendingChange(ctx context.Context, personID, familyID primitive.ObjectID, changes map[string]models.FieldChange) models.PendingChange {
	f.t.Helper()

	pc := models.PendingChange{
		ID:         primitive.NewObjectID(),
		PersonID:   personID,
		FamilyID:   familyID,
		ProposerID: primitive.NewObjectID(),
		Changes:    changes,
		Status:     models.ChangePending,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := f.db.Collection("pending_changes").InsertOne(ctx, pc); err != nil {
		f.t.Fatalf("failed to create test pending change: %v", err)
	}
	return pc
}
