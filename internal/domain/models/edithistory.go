// internal/domain/models/edithistory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EditHistory is one immutable record of an approved change. Entries are
// append-only; nothing in the system updates or deletes them.
type EditHistory struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonID   primitive.ObjectID `bson:"person_id" json:"person_id"`
	FamilyID   primitive.ObjectID `bson:"family_id" json:"family_id"`
	ProposerID primitive.ObjectID `bson:"proposer_id" json:"proposer_id"`
	ApproverID primitive.ObjectID `bson:"approver_id" json:"approver_id"`

	Changes map[string]FieldChange `bson:"changes" json:"changes"`
	Reason  string                 `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes   string                 `bson:"notes,omitempty" json:"notes,omitempty"`

	Status string `bson:"status" json:"status"` // always "approved"

	ProposedAt time.Time `bson:"proposed_at" json:"proposed_at"`
	ApprovedAt time.Time `bson:"approved_at" json:"approved_at"`
}
