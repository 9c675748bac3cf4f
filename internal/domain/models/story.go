// internal/domain/models/story.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story is an oral-history entry attached to a person: a transcribed or
// written account, optionally with a recorded audio blob.
type Story struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonID      primitive.ObjectID `bson:"person_id" json:"person_id"`
	FamilyID      primitive.ObjectID `bson:"family_id" json:"family_id"`
	ContributorID primitive.ObjectID `bson:"contributor_id" json:"contributor_id"`

	Title string `bson:"title" json:"title"`
	Body  string `bson:"body" json:"body"` // sanitized before storage

	AudioRef string `bson:"audio_ref,omitempty" json:"audio_ref,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
