// Package workflow implements the edit-approval workflow: proposing
// field-level changes to a person, detecting overlapping in-flight
// proposals, and applying approvals with their side effects.
//
// Conflict detection is a logical concurrency control, not a lock: it
// flags overlapping edits after the fact rather than serializing
// writers. Conflicts are detected once, when the later of two
// overlapping proposals is created, and recorded on both proposals;
// they are never re-evaluated, so two proposals created concurrently
// can each miss the other. The
// approval side effects are separate writes with no surrounding
// transaction; a failure part-way surfaces as PartialApplyError.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/umunna-dev/umunna/internal/app/events"
	"github.com/umunna-dev/umunna/internal/app/system/metrics"
	"github.com/umunna-dev/umunna/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CascadeRejectionReason is written onto proposals rejected because a
// conflicting proposal was approved.
const CascadeRejectionReason = "Conflicting change was approved"

// ChangeStore is the slice of the pending-changes store the workflow uses.
type ChangeStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.PendingChange, error)
	Insert(ctx context.Context, pc models.PendingChange) (models.PendingChange, error)
	AddConflictRefs(ctx context.Context, ids []primitive.ObjectID, id primitive.ObjectID) error
	ListPendingByPerson(ctx context.Context, personID primitive.ObjectID) ([]models.PendingChange, error)
	MarkApproved(ctx context.Context, id, approverID primitive.ObjectID, notes string) error
	MarkRejected(ctx context.Context, id, rejectorID primitive.ObjectID, reason string) error
}

// PersonStore is the slice of the person store the workflow uses.
type PersonStore interface {
	ApplyFieldValues(ctx context.Context, id primitive.ObjectID, fields map[string]string, editorID primitive.ObjectID) error
}

// HistoryStore appends immutable records of approved changes.
type HistoryStore interface {
	Append(ctx context.Context, e models.EditHistory) (models.EditHistory, error)
}

// Service wires the stores together. Notifier may be nil.
type Service struct {
	changes  ChangeStore
	persons  PersonStore
	history  HistoryStore
	notifier *events.Publisher
	log      *zap.Logger
}

func NewService(changes ChangeStore, persons PersonStore, history HistoryStore, notifier *events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		changes:  changes,
		persons:  persons,
		history:  history,
		notifier: notifier,
		log:      logger,
	}
}

// ProposeInput carries one proposed edit. Current holds the subject's
// field values as the proposer saw them; Proposed holds the values the
// proposer wants. Fields absent from Current compare as empty.
type ProposeInput struct {
	PersonID   primitive.ObjectID
	FamilyID   primitive.ObjectID
	ProposerID primitive.ObjectID
	Current    map[string]string
	Proposed   map[string]string
	Reason     string
}

// Propose diffs the proposed values against the current ones, computes
// the conflict list against the subject's other pending proposals, and
// persists the proposal. Each detected conflict is recorded on both
// sides: the new proposal stores the existing ids, and the new id is
// pushed onto each existing proposal's list, so approving either one
// cascades over the other. It fails with ErrNoChange when no field
// differs after normalization.
//
// A failed conflict scan degrades to an empty conflict list instead of
// failing the proposal; the failure is logged (wrapping
// ErrConflictScan) and counted. Availability is preferred over a
// complete conflict list here because the list is advisory at approval
// time anyway.
func (s *Service) Propose(ctx context.Context, in ProposeInput) (models.PendingChange, error) {
	diff := ComputeDiff(in.Current, in.Proposed)
	if len(diff) == 0 {
		return models.PendingChange{}, ErrNoChange
	}

	var conflicts []primitive.ObjectID
	// Pending proposals come back newest first; the conflict set itself
	// is unordered.
	pending, err := s.changes.ListPendingByPerson(ctx, in.PersonID)
	if err != nil {
		metrics.ConflictScanFailures.Inc()
		s.log.Warn("conflict scan failed; proposal created without conflicts",
			zap.String("person_id", in.PersonID.Hex()),
			zap.Error(fmt.Errorf("%w: %w", ErrConflictScan, err)))
	} else {
		for _, other := range pending {
			if fieldsOverlap(diff, other.Changes) {
				conflicts = append(conflicts, other.ID)
			}
		}
	}

	pc := models.PendingChange{
		PersonID:      in.PersonID,
		FamilyID:      in.FamilyID,
		ProposerID:    in.ProposerID,
		Changes:       diff,
		Reason:        in.Reason,
		Status:        models.ChangePending,
		ConflictsWith: conflicts,
	}
	created, err := s.changes.Insert(ctx, pc)
	if err != nil {
		return models.PendingChange{}, err
	}
	if len(conflicts) > 0 {
		if err := s.changes.AddConflictRefs(ctx, conflicts, created.ID); err != nil {
			// The new proposal still has its own list; only the
			// reverse references are missing. Same degrade as a
			// failed scan.
			metrics.ConflictScanFailures.Inc()
			s.log.Error("conflict back-reference write failed",
				zap.String("change_id", created.ID.Hex()),
				zap.Error(fmt.Errorf("%w: %w", ErrConflictScan, err)))
		}
	}

	metrics.ProposalsCreated.Inc()
	metrics.ConflictsDetected.Add(float64(len(conflicts)))
	s.log.Info("change proposed",
		zap.String("change_id", created.ID.Hex()),
		zap.String("person_id", in.PersonID.Hex()),
		zap.Int("fields", len(diff)),
		zap.Int("conflicts", len(conflicts)))
	return created, nil
}

// ListPending returns a person's pending proposals, newest first.
func (s *Service) ListPending(ctx context.Context, personID primitive.ObjectID) ([]models.PendingChange, error) {
	return s.changes.ListPendingByPerson(ctx, personID)
}

// Approve applies a proposal: writes its new field values to the
// person, appends a history entry, marks the proposal approved, and
// rejects every proposal in its stored conflict list. The cascade uses
// the list computed at propose time and overwrites unconditionally,
// even proposals that have since reached a terminal status.
//
// The steps are separate writes. A failure after the first leaves
// partial state and is reported as *PartialApplyError naming the step;
// re-invoking repeats earlier steps (they are not individually
// idempotent-keyed) but converges to the same final record values.
func (s *Service) Approve(ctx context.Context, proposalID, approverID primitive.ObjectID, notes string) error {
	pc, err := s.changes.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	newValues := make(map[string]string, len(pc.Changes))
	for field, ch := range pc.Changes {
		newValues[field] = ch.New
	}
	if err := s.persons.ApplyFieldValues(ctx, pc.PersonID, newValues, approverID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return &PartialApplyError{Step: StepApplyPerson, Err: err}
	}

	entry := models.EditHistory{
		PersonID:   pc.PersonID,
		FamilyID:   pc.FamilyID,
		ProposerID: pc.ProposerID,
		ApproverID: approverID,
		Changes:    pc.Changes,
		Reason:     pc.Reason,
		Notes:      notes,
		Status:     models.ChangeApproved,
		ProposedAt: pc.CreatedAt,
		ApprovedAt: nowUTC(),
	}
	if _, err := s.history.Append(ctx, entry); err != nil {
		return &PartialApplyError{Step: StepAppendHistory, Err: err}
	}

	if err := s.changes.MarkApproved(ctx, proposalID, approverID, notes); err != nil {
		return &PartialApplyError{Step: StepMarkApproved, Err: err}
	}

	var cascadeErrs []error
	for _, conflictID := range pc.ConflictsWith {
		if err := s.changes.MarkRejected(ctx, conflictID, approverID, CascadeRejectionReason); err != nil {
			cascadeErrs = append(cascadeErrs, err)
			continue
		}
		metrics.ProposalsRejected.Inc()
	}

	metrics.ProposalsApproved.Inc()
	s.log.Info("change approved",
		zap.String("change_id", proposalID.Hex()),
		zap.String("person_id", pc.PersonID.Hex()),
		zap.String("approver_id", approverID.Hex()),
		zap.Int("cascade_rejected", len(pc.ConflictsWith)-len(cascadeErrs)))
	s.publish(events.SubjectChangeApproved, pc, approverID)

	if len(cascadeErrs) > 0 {
		return &PartialApplyError{Step: StepCascadeReject, Err: errors.Join(cascadeErrs...)}
	}
	return nil
}

// Reject marks a proposal rejected. No cascade: rejecting one proposal
// says nothing about the others.
func (s *Service) Reject(ctx context.Context, proposalID, rejectorID primitive.ObjectID, reason string) error {
	pc, err := s.changes.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if err := s.changes.MarkRejected(ctx, proposalID, rejectorID, reason); err != nil {
		return err
	}

	metrics.ProposalsRejected.Inc()
	s.log.Info("change rejected",
		zap.String("change_id", proposalID.Hex()),
		zap.String("rejector_id", rejectorID.Hex()))
	s.publish(events.SubjectChangeRejected, pc, rejectorID)
	return nil
}

func (s *Service) publish(subject string, pc models.PendingChange, resolvedBy primitive.ObjectID) {
	if s.notifier == nil {
		return
	}
	fields := make([]string, 0, len(pc.Changes))
	for f := range pc.Changes {
		fields = append(fields, f)
	}
	s.notifier.Publish(subject, events.ChangeEvent{
		ChangeID:   pc.ID.Hex(),
		PersonID:   pc.PersonID.Hex(),
		FamilyID:   pc.FamilyID.Hex(),
		ProposerID: pc.ProposerID.Hex(),
		ResolvedBy: resolvedBy.Hex(),
		Fields:     fields,
		ResolvedAt: nowUTC(),
	})
}
