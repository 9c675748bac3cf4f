package personstore

import (
	"testing"

	"github.com/umunna-dev/umunna/internal/domain/models"
	"github.com/umunna-dev/umunna/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateAndGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")

	store := New(db)

	created, err := store.Create(ctx, models.Person{
		FamilyID: fam.ID,
		FullName: "Chinwe Okafor",
		Gender:   models.GenderFemale,
		IsAlive:  true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected a generated id")
	}
	if created.FullNameCI != "chinwe okafor" {
		t.Errorf("expected folded name, got %q", created.FullNameCI)
	}
	if created.VerificationStatus != models.VerificationUnverified {
		t.Errorf("expected default verification status, got %q", created.VerificationStatus)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FullName != "Chinwe Okafor" {
		t.Errorf("expected full name round-trip, got %q", got.FullName)
	}
	if got.FamilyID != fam.ID {
		t.Errorf("expected family id %s, got %s", fam.ID.Hex(), got.FamilyID.Hex())
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	p := fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)

	store := New(db)
	editor := primitive.NewObjectID()

	occ := "Farmer"
	village := "Umudioka"
	err := store.Update(ctx, p.ID, Update{
		Occupation:    &occ,
		VillageOrigin: &village,
	}, editor)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Occupation != "Farmer" {
		t.Errorf("expected occupation updated, got %q", got.Occupation)
	}
	if got.VillageOrigin != "Umudioka" {
		t.Errorf("expected village updated, got %q", got.VillageOrigin)
	}
	if got.FullName != "Emeka Okafor" {
		t.Errorf("untouched field changed: %q", got.FullName)
	}
	if got.LastEditedBy == nil || *got.LastEditedBy != editor {
		t.Error("expected last_edited_by to record the editor")
	}
}

func TestUpdate_FullNameRefoldsCI(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	p := fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)

	store := New(db)

	name := "Émeka Òkafor"
	if err := store.Update(ctx, p.ID, Update{FullName: &name}, primitive.NewObjectID()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FullNameCI != "emeka okafor" {
		t.Errorf("expected diacritics-stripped folded name, got %q", got.FullNameCI)
	}
}

func TestApplyFieldValues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	p := fx.CreatePerson(ctx, fam.ID, "Adaeze Okafor", models.GenderFemale)

	store := New(db)
	editor := primitive.NewObjectID()

	err := store.ApplyFieldValues(ctx, p.ID, map[string]string{
		"occupation": "Trader",
		"clan_name":  "Umuezeala",
		"full_name":  "Adaeze Obi",
	}, editor)
	if err != nil {
		t.Fatalf("ApplyFieldValues failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Occupation != "Trader" {
		t.Errorf("expected occupation applied, got %q", got.Occupation)
	}
	if got.ClanName != "Umuezeala" {
		t.Errorf("expected clan applied, got %q", got.ClanName)
	}
	if got.FullName != "Adaeze Obi" {
		t.Errorf("expected full name applied, got %q", got.FullName)
	}
	if got.FullNameCI != "adaeze obi" {
		t.Errorf("expected folded name refreshed, got %q", got.FullNameCI)
	}
}

func TestSearchByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	other := fx.CreateFamily(ctx, "Nwosu")

	fx.CreatePerson(ctx, fam.ID, "Chinwe Okafor", models.GenderFemale)
	fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)
	fx.CreatePerson(ctx, other.ID, "Chinwe Nwosu", models.GenderFemale)

	store := New(db)

	results, err := store.SearchByName(ctx, fam.ID, "chinwe")
	if err != nil {
		t.Fatalf("SearchByName failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 match scoped to the family, got %d", len(results))
	}
	if results[0].FullName != "Chinwe Okafor" {
		t.Errorf("expected Chinwe Okafor, got %q", results[0].FullName)
	}
}

func TestSearchByName_MetacharactersMatchLiterally(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	fx.CreatePerson(ctx, fam.ID, "Chinwe Okafor", models.GenderFemale)
	fx.CreatePerson(ctx, fam.ID, "N.A. Okafor", models.GenderMale)

	store := New(db)

	results, err := store.SearchByName(ctx, fam.ID, ".")
	if err != nil {
		t.Fatalf("SearchByName failed: %v", err)
	}
	if len(results) != 1 || results[0].FullName != "N.A. Okafor" {
		t.Errorf("expected a dot to match only a literal dot, got %+v", results)
	}

	// An unbalanced metacharacter must not surface a server error.
	results, err = store.SearchByName(ctx, fam.ID, "(chinwe")
	if err != nil {
		t.Fatalf("SearchByName with unbalanced paren failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no matches for a literal paren, got %+v", results)
	}
}

func TestDelete_RemovesDanglingEdges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	parent := fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)
	child := fx.CreatePerson(ctx, fam.ID, "Obi Okafor", models.GenderMale)
	spouse := fx.CreatePerson(ctx, fam.ID, "Chinwe Okafor", models.GenderFemale)

	fx.CreateParentChild(ctx, fam.ID, parent.ID, child.ID)
	fx.CreateSpousal(ctx, fam.ID, parent.ID, spouse.ID, models.MaritalMarried)

	store := New(db)

	n, err := store.Delete(ctx, parent.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 person deleted, got %d", n)
	}

	rels, err := db.Collection("relationships").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("counting relationships: %v", err)
	}
	if rels != 0 {
		t.Errorf("expected parent-child edges removed, %d remain", rels)
	}

	spousals, err := db.Collection("spousal_relationships").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("counting spousal relationships: %v", err)
	}
	if spousals != 0 {
		t.Errorf("expected spousal edges removed, %d remain", spousals)
	}
}

func TestCountByFamily(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fam := fx.CreateFamily(ctx, "Okafor")
	fx.CreatePerson(ctx, fam.ID, "Chinwe Okafor", models.GenderFemale)
	fx.CreatePerson(ctx, fam.ID, "Emeka Okafor", models.GenderMale)

	store := New(db)

	n, err := store.CountByFamily(ctx, fam.ID)
	if err != nil {
		t.Fatalf("CountByFamily failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 persons, got %d", n)
	}
}
