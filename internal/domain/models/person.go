// internal/domain/models/person.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender values stored on Person. An empty string means the gender was
// never recorded.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Verification statuses for a person record.
const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationVerified   = "verified"
)

// Person is one individual in a family tree.
//
// NOTE:
//   - Parent/child and spousal links are not embedded here. They live in
//     the relationships and spousal_relationships collections.
//   - Dates of birth/death are stored as the user entered them (free
//     text); the GEDCOM codec parses them on export and omits the DATE
//     line when they cannot be parsed.
type Person struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyID   primitive.ObjectID `bson:"family_id" json:"family_id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Gender     string             `bson:"gender,omitempty" json:"gender,omitempty"`

	DateOfBirth  string `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	DateOfDeath  string `bson:"date_of_death,omitempty" json:"date_of_death,omitempty"`
	PlaceOfBirth string `bson:"place_of_birth,omitempty" json:"place_of_birth,omitempty"`
	PlaceOfDeath string `bson:"place_of_death,omitempty" json:"place_of_death,omitempty"`

	Occupation    string `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Biography     string `bson:"biography,omitempty" json:"biography,omitempty"`
	ClanName      string `bson:"clan_name,omitempty" json:"clan_name,omitempty"`
	VillageOrigin string `bson:"village_origin,omitempty" json:"village_origin,omitempty"`

	IsAlive            bool   `bson:"is_alive" json:"is_alive"`
	VerificationStatus string `bson:"verification_status,omitempty" json:"verification_status,omitempty"`

	// ClaimedBy links the record to the user who claims to be this person.
	ClaimedBy       *primitive.ObjectID `bson:"claimed_by,omitempty" json:"claimed_by,omitempty"`
	ProfilePhotoRef string              `bson:"profile_photo_ref,omitempty" json:"profile_photo_ref,omitempty"`

	LastEditedBy *primitive.ObjectID `bson:"last_edited_by,omitempty" json:"last_edited_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
