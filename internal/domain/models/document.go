// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document kinds. Free-form; these are the ones the UI offers.
const (
	DocumentCertificate = "certificate"
	DocumentPhoto       = "photo"
	DocumentLetter      = "letter"
	DocumentOther       = "other"
)

// DocumentRecord is the metadata for an uploaded file. The bytes live in
// the blob store under BlobRef; this record is what the document
// listings read.
type DocumentRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonID   primitive.ObjectID `bson:"person_id" json:"person_id"`
	FamilyID   primitive.ObjectID `bson:"family_id" json:"family_id"`
	UploaderID primitive.ObjectID `bson:"uploader_id" json:"uploader_id"`

	Title string `bson:"title" json:"title"`
	Kind  string `bson:"kind,omitempty" json:"kind,omitempty"`

	BlobRef     string `bson:"blob_ref" json:"blob_ref"`
	ContentType string `bson:"content_type,omitempty" json:"content_type,omitempty"`
	Size        int64  `bson:"size,omitempty" json:"size,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
