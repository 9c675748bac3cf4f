package changestore

import (
	"errors"
	"testing"
	"time"

	"github.com/umunna-dev/umunna/internal/domain/models"
	"github.com/umunna-dev/umunna/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestInsertAndGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	p := fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)

	store := New(db)

	pc, err := store.Insert(ctx, models.PendingChange{
		PersonID:   p.ID,
		FamilyID:   fam.ID,
		ProposerID: primitive.NewObjectID(),
		Changes: map[string]models.FieldChange{
			"occupation": {Old: "", New: "Farmer"},
		},
		Status: models.ChangePending,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if pc.ID.IsZero() {
		t.Fatal("expected a generated id")
	}

	got, err := store.GetByID(ctx, pc.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.ChangePending {
		t.Errorf("expected pending status, got %q", got.Status)
	}
	if got.Changes["occupation"].New != "Farmer" {
		t.Errorf("expected change round-trip, got %+v", got.Changes)
	}
}

func TestListPendingByPerson_NewestFirstAndFiltered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	p := fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	insert := func(status string, offset time.Duration, field string) primitive.ObjectID {
		pc := models.PendingChange{
			ID:         primitive.NewObjectID(),
			PersonID:   p.ID,
			FamilyID:   fam.ID,
			ProposerID: primitive.NewObjectID(),
			Changes: map[string]models.FieldChange{
				field: {New: "x"},
			},
			Status:    status,
			CreatedAt: base.Add(offset),
		}
		if _, err := db.Collection("pending_changes").InsertOne(ctx, pc); err != nil {
			t.Fatalf("inserting test change: %v", err)
		}
		return pc.ID
	}

	oldest := insert(models.ChangePending, 0, "occupation")
	insert(models.ChangeApproved, time.Minute, "gender")
	newest := insert(models.ChangePending, 2*time.Minute, "biography")

	store := New(db)

	pending, err := store.ListPendingByPerson(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListPendingByPerson failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending proposals, got %d", len(pending))
	}
	if pending[0].ID != newest || pending[1].ID != oldest {
		t.Error("expected newest-first order with resolved proposals excluded")
	}
}

func TestAddConflictRefs_SetWise(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	p := fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)

	first := fx.CreatePendingChange(ctx, p.ID, fam.ID, map[string]models.FieldChange{
		"occupation": {New: "Farmer"},
	})
	second := fx.CreatePendingChange(ctx, p.ID, fam.ID, map[string]models.FieldChange{
		"occupation": {New: "Trader"},
	})

	store := New(db)

	refs := []primitive.ObjectID{first.ID}
	if err := store.AddConflictRefs(ctx, refs, second.ID); err != nil {
		t.Fatalf("AddConflictRefs failed: %v", err)
	}
	if err := store.AddConflictRefs(ctx, refs, second.ID); err != nil {
		t.Fatalf("repeat AddConflictRefs failed: %v", err)
	}

	got, err := store.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.ConflictsWith) != 1 || got.ConflictsWith[0] != second.ID {
		t.Errorf("expected exactly one reference to the second proposal, got %v", got.ConflictsWith)
	}

	if err := store.AddConflictRefs(ctx, nil, second.ID); err != nil {
		t.Fatalf("empty AddConflictRefs failed: %v", err)
	}
}

func TestMarkApprovedAndRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	p := fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)

	first := fx.CreatePendingChange(ctx, p.ID, fam.ID, map[string]models.FieldChange{
		"occupation": {New: "Farmer"},
	})
	second := fx.CreatePendingChange(ctx, p.ID, fam.ID, map[string]models.FieldChange{
		"occupation": {New: "Trader"},
	})

	store := New(db)
	resolver := primitive.NewObjectID()

	if err := store.MarkApproved(ctx, first.ID, resolver, "verified with elders"); err != nil {
		t.Fatalf("MarkApproved failed: %v", err)
	}
	got, err := store.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.ChangeApproved {
		t.Errorf("expected approved, got %q", got.Status)
	}
	if got.ApprovalNotes != "verified with elders" {
		t.Errorf("expected approval notes stored, got %q", got.ApprovalNotes)
	}
	if got.ResolvedBy == nil || *got.ResolvedBy != resolver {
		t.Error("expected resolved_by recorded")
	}
	if got.ResolvedAt == nil {
		t.Error("expected resolved_at recorded")
	}

	if err := store.MarkRejected(ctx, second.ID, resolver, "incorrect value"); err != nil {
		t.Fatalf("MarkRejected failed: %v", err)
	}
	got, err = store.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.ChangeRejected {
		t.Errorf("expected rejected, got %q", got.Status)
	}
	if got.RejectionReason != "incorrect value" {
		t.Errorf("expected rejection reason stored, got %q", got.RejectionReason)
	}
}

func TestMarkRejected_OverwritesTerminal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	p := fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)

	pc := fx.CreatePendingChange(ctx, p.ID, fam.ID, map[string]models.FieldChange{
		"occupation": {New: "Farmer"},
	})

	store := New(db)
	resolver := primitive.NewObjectID()

	if err := store.MarkApproved(ctx, pc.ID, resolver, ""); err != nil {
		t.Fatalf("MarkApproved failed: %v", err)
	}
	if err := store.MarkRejected(ctx, pc.ID, resolver, "Conflicting change was approved"); err != nil {
		t.Fatalf("MarkRejected failed: %v", err)
	}

	got, err := store.GetByID(ctx, pc.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.ChangeRejected {
		t.Errorf("expected the rejection to overwrite the approval, got %q", got.Status)
	}
}

func TestMark_MissingProposal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)

	err := store.MarkApproved(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}
