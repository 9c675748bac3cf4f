// internal/domain/models/relationship.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relationship is one directed parent-child edge. A child may carry any
// number of parent edges and a parent any number of child edges.
type Relationship struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyID primitive.ObjectID `bson:"family_id" json:"family_id"`
	ParentID primitive.ObjectID `bson:"parent_id" json:"parent_id"`
	ChildID  primitive.ObjectID `bson:"child_id" json:"child_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Marital statuses for a spousal relationship.
const (
	MaritalMarried   = "married"
	MaritalDivorced  = "divorced"
	MaritalWidowed   = "widowed"
	MaritalSeparated = "separated"
)

// SpousalRelationship is one undirected spouse edge. The pair is stored
// canonically with Spouse1ID < Spouse2ID (hex order) so a pair exists at
// most once and can be found with a single query regardless of which
// endpoint the caller starts from.
type SpousalRelationship struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyID  primitive.ObjectID `bson:"family_id" json:"family_id"`
	Spouse1ID primitive.ObjectID `bson:"spouse1_id" json:"spouse1_id"`
	Spouse2ID primitive.ObjectID `bson:"spouse2_id" json:"spouse2_id"`

	MaritalStatus string `bson:"marital_status" json:"marital_status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
