// internal/domain/models/pendingchange.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingChange statuses. Both approved and rejected are terminal.
const (
	ChangePending  = "pending"
	ChangeApproved = "approved"
	ChangeRejected = "rejected"
)

// FieldChange holds the original (non-normalized) old and new value for
// one changed field.
type FieldChange struct {
	Old string `bson:"old" json:"old"`
	New string `bson:"new" json:"new"`
}

// PendingChange is a proposed field-level edit to a person awaiting
// approval. It is created by a proposer and afterwards mutated only by
// the approval workflow (status transition); the proposer never touches
// it again.
//
// ConflictsWith holds both directions of a conflicting pair: set
// against the proposals pending at creation time, and extended when a
// later overlapping proposal is created. Conflicts are never
// re-evaluated against resolved proposals; a proposal approved later
// that was not in this list is still applied.
type PendingChange struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonID   primitive.ObjectID `bson:"person_id" json:"person_id"`
	FamilyID   primitive.ObjectID `bson:"family_id" json:"family_id"`
	ProposerID primitive.ObjectID `bson:"proposer_id" json:"proposer_id"`

	Changes map[string]FieldChange `bson:"changes" json:"changes"` // never empty
	Reason  string                 `bson:"reason,omitempty" json:"reason,omitempty"`

	Status        string               `bson:"status" json:"status"`
	ConflictsWith []primitive.ObjectID `bson:"conflicts_with,omitempty" json:"conflicts_with,omitempty"`

	// Resolution bookkeeping, set by the workflow on approve/reject.
	ResolvedBy      *primitive.ObjectID `bson:"resolved_by,omitempty" json:"resolved_by,omitempty"`
	ApprovalNotes   string              `bson:"approval_notes,omitempty" json:"approval_notes,omitempty"`
	RejectionReason string              `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	ResolvedAt      *time.Time          `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
