package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// In-memory store fakes. They model just enough of the Mongo-backed
// stores for the workflow: keyed records, newest-first pending listing,
// unguarded status overwrites.

type fakeChangeStore struct {
	records map[primitive.ObjectID]*models.PendingChange
	order   []primitive.ObjectID // insertion order
	listErr error
	refErr  error
}

func newFakeChangeStore() *fakeChangeStore {
	return &fakeChangeStore{records: map[primitive.ObjectID]*models.PendingChange{}}
}

func (f *fakeChangeStore) GetByID(_ context.Context, id primitive.ObjectID) (models.PendingChange, error) {
	pc, ok := f.records[id]
	if !ok {
		return models.PendingChange{}, mongo.ErrNoDocuments
	}
	return *pc, nil
}

func (f *fakeChangeStore) Insert(_ context.Context, pc models.PendingChange) (models.PendingChange, error) {
	pc.ID = primitive.NewObjectID()
	pc.CreatedAt = time.Now().UTC()
	f.records[pc.ID] = &pc
	f.order = append(f.order, pc.ID)
	return pc, nil
}

func (f *fakeChangeStore) AddConflictRefs(_ context.Context, ids []primitive.ObjectID, id primitive.ObjectID) error {
	if f.refErr != nil {
		return f.refErr
	}
	for _, target := range ids {
		pc, ok := f.records[target]
		if !ok {
			continue
		}
		seen := false
		for _, existing := range pc.ConflictsWith {
			if existing == id {
				seen = true
				break
			}
		}
		if !seen {
			pc.ConflictsWith = append(pc.ConflictsWith, id)
		}
	}
	return nil
}

func (f *fakeChangeStore) ListPendingByPerson(_ context.Context, personID primitive.ObjectID) ([]models.PendingChange, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.PendingChange
	for i := len(f.order) - 1; i >= 0; i-- { // newest first
		pc := f.records[f.order[i]]
		if pc.PersonID == personID && pc.Status == models.ChangePending {
			out = append(out, *pc)
		}
	}
	return out, nil
}

func (f *fakeChangeStore) MarkApproved(_ context.Context, id, approverID primitive.ObjectID, notes string) error {
	pc, ok := f.records[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	now := time.Now().UTC()
	pc.Status = models.ChangeApproved
	pc.ResolvedBy = &approverID
	pc.ApprovalNotes = notes
	pc.ResolvedAt = &now
	return nil
}

func (f *fakeChangeStore) MarkRejected(_ context.Context, id, rejectorID primitive.ObjectID, reason string) error {
	pc, ok := f.records[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	now := time.Now().UTC()
	pc.Status = models.ChangeRejected
	pc.ResolvedBy = &rejectorID
	pc.RejectionReason = reason
	pc.ResolvedAt = &now
	return nil
}

type fakePersonStore struct {
	applied  map[string]string
	editor   primitive.ObjectID
	applyErr error
}

func (f *fakePersonStore) ApplyFieldValues(_ context.Context, _ primitive.ObjectID, fields map[string]string, editorID primitive.ObjectID) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	if f.applied == nil {
		f.applied = map[string]string{}
	}
	for k, v := range fields {
		f.applied[k] = v
	}
	f.editor = editorID
	return nil
}

type fakeHistoryStore struct {
	entries   []models.EditHistory
	appendErr error
}

func (f *fakeHistoryStore) Append(_ context.Context, e models.EditHistory) (models.EditHistory, error) {
	if f.appendErr != nil {
		return models.EditHistory{}, f.appendErr
	}
	e.ID = primitive.NewObjectID()
	f.entries = append(f.entries, e)
	return e, nil
}

type fixture struct {
	svc     *Service
	changes *fakeChangeStore
	persons *fakePersonStore
	history *fakeHistoryStore
}

func newFixture() fixture {
	changes := newFakeChangeStore()
	persons := &fakePersonStore{}
	history := &fakeHistoryStore{}
	svc := NewService(changes, persons, history, nil, zap.NewNop())
	return fixture{svc: svc, changes: changes, persons: persons, history: history}
}

func TestPropose_CreatesPendingProposal(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()

	pc, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID:   personID,
		FamilyID:   primitive.NewObjectID(),
		ProposerID: primitive.NewObjectID(),
		Current:    map[string]string{"occupation": "Trader"},
		Proposed:   map[string]string{"occupation": "Farmer"},
		Reason:     "He changed trade after the war",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	if pc.Status != models.ChangePending {
		t.Errorf("status: got %q, want %q", pc.Status, models.ChangePending)
	}
	if len(pc.Changes) != 1 {
		t.Fatalf("expected 1 changed field, got %d", len(pc.Changes))
	}
	if ch := pc.Changes["occupation"]; ch.Old != "Trader" || ch.New != "Farmer" {
		t.Errorf("change: got %+v", ch)
	}
	if len(pc.ConflictsWith) != 0 {
		t.Errorf("expected no conflicts, got %v", pc.ConflictsWith)
	}
}

func TestPropose_NoChangeFails(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID:   primitive.NewObjectID(),
		ProposerID: primitive.NewObjectID(),
		Current:    map[string]string{"biography": "He farmed yams."},
		Proposed:   map[string]string{"biography": "  He farmed yams. "},
	})
	if !errors.Is(err, ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
	if len(fx.changes.records) != 0 {
		t.Error("no proposal record should have been created")
	}
}

func TestPropose_OverlappingFieldsConflict(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()
	current := map[string]string{"occupation": "Trader"}

	first, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Farmer"},
	})
	if err != nil {
		t.Fatalf("first Propose failed: %v", err)
	}

	second, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Blacksmith"},
	})
	if err != nil {
		t.Fatalf("second Propose failed: %v", err)
	}

	if len(second.ConflictsWith) != 1 || second.ConflictsWith[0] != first.ID {
		t.Errorf("second proposal conflicts: got %v, want [%v]", second.ConflictsWith, first.ID)
	}
	// Both sides reference each other once both exist.
	stored, _ := fx.changes.GetByID(ctx, first.ID)
	if len(stored.ConflictsWith) != 1 || stored.ConflictsWith[0] != second.ID {
		t.Errorf("first proposal conflicts: got %v, want [%v]", stored.ConflictsWith, second.ID)
	}
}

func TestApprove_OlderProposalCascadesOverNewer(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()
	current := map[string]string{"occupation": "Trader"}

	first, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Farmer"},
	})
	if err != nil {
		t.Fatalf("first Propose failed: %v", err)
	}
	second, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Blacksmith"},
	})
	if err != nil {
		t.Fatalf("second Propose failed: %v", err)
	}

	if err := fx.svc.Approve(ctx, first.ID, primitive.NewObjectID(), ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if fx.persons.applied["occupation"] != "Farmer" {
		t.Errorf("applied value: got %q, want %q", fx.persons.applied["occupation"], "Farmer")
	}
	rejected, _ := fx.changes.GetByID(ctx, second.ID)
	if rejected.Status != models.ChangeRejected {
		t.Errorf("second proposal status: got %q, want %q", rejected.Status, models.ChangeRejected)
	}
	if rejected.RejectionReason != CascadeRejectionReason {
		t.Errorf("rejection reason: got %q, want %q", rejected.RejectionReason, CascadeRejectionReason)
	}
}

func TestPropose_BackRefFailureStillCreatesProposal(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()
	current := map[string]string{"occupation": "Trader"}

	first, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Farmer"},
	})
	if err != nil {
		t.Fatalf("first Propose failed: %v", err)
	}

	fx.changes.refErr = errors.New("store unavailable")
	second, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Blacksmith"},
	})
	if err != nil {
		t.Fatalf("Propose should not fail on a back-reference error: %v", err)
	}
	if len(second.ConflictsWith) != 1 || second.ConflictsWith[0] != first.ID {
		t.Errorf("second proposal conflicts: got %v, want [%v]", second.ConflictsWith, first.ID)
	}
}

func TestPropose_DisjointFieldsDoNotConflict(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()

	_, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: map[string]string{}, Proposed: map[string]string{"occupation": "Farmer"},
	})
	if err != nil {
		t.Fatalf("first Propose failed: %v", err)
	}

	second, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: map[string]string{}, Proposed: map[string]string{"biography": "Born in Nri."},
	})
	if err != nil {
		t.Fatalf("second Propose failed: %v", err)
	}
	if len(second.ConflictsWith) != 0 {
		t.Errorf("expected no conflicts for disjoint fields, got %v", second.ConflictsWith)
	}
}

func TestPropose_ScanFailureDegradesToNoConflicts(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	fx.changes.listErr = errors.New("store unavailable")

	pc, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: primitive.NewObjectID(), ProposerID: primitive.NewObjectID(),
		Current: map[string]string{}, Proposed: map[string]string{"occupation": "Farmer"},
	})
	if err != nil {
		t.Fatalf("Propose should not fail on a conflict-scan error: %v", err)
	}
	if len(pc.ConflictsWith) != 0 {
		t.Errorf("expected empty conflict list, got %v", pc.ConflictsWith)
	}
}

func TestApprove_AppliesValuesAndWritesHistory(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()
	approverID := primitive.NewObjectID()

	pc, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current:  map[string]string{"occupation": "Trader"},
		Proposed: map[string]string{"occupation": "Farmer", "biography": "Born in Nri."},
		Reason:   "corrections from the family meeting",
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	if err := fx.svc.Approve(ctx, pc.ID, approverID, "seen the records"); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if fx.persons.applied["occupation"] != "Farmer" || fx.persons.applied["biography"] != "Born in Nri." {
		t.Errorf("applied values: got %v", fx.persons.applied)
	}
	if fx.persons.editor != approverID {
		t.Errorf("last editor: got %v, want approver %v", fx.persons.editor, approverID)
	}

	if len(fx.history.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(fx.history.entries))
	}
	entry := fx.history.entries[0]
	if entry.Status != models.ChangeApproved {
		t.Errorf("history status: got %q", entry.Status)
	}
	if entry.ApproverID != approverID {
		t.Errorf("history approver: got %v", entry.ApproverID)
	}
	if entry.Reason != "corrections from the family meeting" || entry.Notes != "seen the records" {
		t.Errorf("history reason/notes: got %q / %q", entry.Reason, entry.Notes)
	}

	stored, _ := fx.changes.GetByID(ctx, pc.ID)
	if stored.Status != models.ChangeApproved {
		t.Errorf("proposal status: got %q", stored.Status)
	}
}

func TestApprove_CascadeRejectsConflicts(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()
	current := map[string]string{"occupation": "Trader"}

	first, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Farmer"},
	})
	if err != nil {
		t.Fatalf("first Propose failed: %v", err)
	}
	second, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Blacksmith"},
	})
	if err != nil {
		t.Fatalf("second Propose failed: %v", err)
	}

	// Approving the second rejects the first; the first's value is
	// never applied.
	if err := fx.svc.Approve(ctx, second.ID, primitive.NewObjectID(), ""); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	rejected, _ := fx.changes.GetByID(ctx, first.ID)
	if rejected.Status != models.ChangeRejected {
		t.Errorf("conflicting proposal status: got %q, want %q", rejected.Status, models.ChangeRejected)
	}
	if rejected.RejectionReason != CascadeRejectionReason {
		t.Errorf("rejection reason: got %q, want %q", rejected.RejectionReason, CascadeRejectionReason)
	}
	if fx.persons.applied["occupation"] != "Blacksmith" {
		t.Errorf("applied occupation: got %q, want %q", fx.persons.applied["occupation"], "Blacksmith")
	}
}

func TestApprove_MissingProposal(t *testing.T) {
	fx := newFixture()

	err := fx.svc.Approve(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApprove_HistoryFailureIsPartialApply(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	fx.history.appendErr = errors.New("history write refused")

	pc, err := fx.svc.Propose(ctx, ProposeInput{
		PersonID: primitive.NewObjectID(), ProposerID: primitive.NewObjectID(),
		Current: map[string]string{}, Proposed: map[string]string{"occupation": "Farmer"},
	})
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}

	err = fx.svc.Approve(ctx, pc.ID, primitive.NewObjectID(), "")
	var pae *PartialApplyError
	if !errors.As(err, &pae) {
		t.Fatalf("expected PartialApplyError, got %v", err)
	}
	if pae.Step != StepAppendHistory {
		t.Errorf("failed step: got %q, want %q", pae.Step, StepAppendHistory)
	}
	// The person update landed before the failure; that is the
	// documented partial state.
	if fx.persons.applied["occupation"] != "Farmer" {
		t.Error("expected person update to have been applied before the failure")
	}
	stored, _ := fx.changes.GetByID(ctx, pc.ID)
	if stored.Status != models.ChangePending {
		t.Errorf("proposal status should remain pending, got %q", stored.Status)
	}
}

func TestReject_MarksRejectedWithoutCascade(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()
	current := map[string]string{"occupation": "Trader"}

	first, _ := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Farmer"},
	})
	second, _ := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: current, Proposed: map[string]string{"occupation": "Blacksmith"},
	})

	rejectorID := primitive.NewObjectID()
	if err := fx.svc.Reject(ctx, second.ID, rejectorID, "not supported by records"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	stored, _ := fx.changes.GetByID(ctx, second.ID)
	if stored.Status != models.ChangeRejected {
		t.Errorf("status: got %q", stored.Status)
	}
	if stored.RejectionReason != "not supported by records" {
		t.Errorf("reason: got %q", stored.RejectionReason)
	}
	// The other proposal is untouched.
	other, _ := fx.changes.GetByID(ctx, first.ID)
	if other.Status != models.ChangePending {
		t.Errorf("other proposal status: got %q, want pending", other.Status)
	}
	if len(fx.history.entries) != 0 {
		t.Error("reject must not write history")
	}
}

func TestListPending_NewestFirst(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	personID := primitive.NewObjectID()

	first, _ := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: map[string]string{}, Proposed: map[string]string{"occupation": "Farmer"},
	})
	second, _ := fx.svc.Propose(ctx, ProposeInput{
		PersonID: personID, ProposerID: primitive.NewObjectID(),
		Current: map[string]string{}, Proposed: map[string]string{"biography": "Born in Nri."},
	})

	pending, err := fx.svc.ListPending(ctx, personID)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != second.ID || pending[1].ID != first.ID {
		t.Error("expected newest-first ordering")
	}
}
