// Package relationships manages the family-tree edges: directed
// parent-child links and undirected spousal links.
package relationships

import (
	"context"
	"errors"
	"net/http"

	personstore "github.com/umunna-dev/umunna/internal/app/store/persons"
	relationshipstore "github.com/umunna-dev/umunna/internal/app/store/relationships"
	"github.com/umunna-dev/umunna/internal/app/system/httpjson"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for relationship management.
type Handler struct {
	Rels    *relationshipstore.Store
	Persons *personstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Rels:    relationshipstore.New(db),
		Persons: personstore.New(db),
		Log:     logger,
	}
}

type parentChildRequest struct {
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`
}

// bothInOneFamily loads both endpoints and checks they share a family.
// Edges never cross family boundaries.
func (h *Handler) bothInOneFamily(ctx context.Context, aID, bID primitive.ObjectID) (primitive.ObjectID, error) {
	a, err := h.Persons.GetByID(ctx, aID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	b, err := h.Persons.GetByID(ctx, bID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if a.FamilyID != b.FamilyID {
		return primitive.NilObjectID, errCrossFamily
	}
	return a.FamilyID, nil
}

var errCrossFamily = errors.New("both persons must belong to the same family")

// AddParentChild handles POST /relationships/parent-child.
func (h *Handler) AddParentChild(w http.ResponseWriter, r *http.Request) {
	var req parentChildRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	parentID, err := primitive.ObjectIDFromHex(req.ParentID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid parent id")
		return
	}
	childID, err := primitive.ObjectIDFromHex(req.ChildID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid child id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	familyID, err := h.bothInOneFamily(ctx, parentID, childID)
	if err != nil {
		h.writeEndpointError(w, err)
		return
	}

	rel, err := h.Rels.AddParentChild(ctx, familyID, parentID, childID)
	if err != nil {
		switch {
		case errors.Is(err, relationshipstore.ErrSelfRelationship),
			errors.Is(err, relationshipstore.ErrDuplicateRelationship):
			httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.Log.Error("parent-child create failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "could not create relationship")
		}
		return
	}
	httpjson.Write(w, http.StatusCreated, rel)
}

type spousalRequest struct {
	Spouse1ID     string `json:"spouse1_id"`
	Spouse2ID     string `json:"spouse2_id"`
	MaritalStatus string `json:"marital_status"`
}

// AddSpousal handles POST /relationships/spousal.
func (h *Handler) AddSpousal(w http.ResponseWriter, r *http.Request) {
	var req spousalRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s1, err := primitive.ObjectIDFromHex(req.Spouse1ID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid spouse1 id")
		return
	}
	s2, err := primitive.ObjectIDFromHex(req.Spouse2ID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid spouse2 id")
		return
	}
	if req.MaritalStatus == "" {
		req.MaritalStatus = models.MaritalMarried
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	familyID, err := h.bothInOneFamily(ctx, s1, s2)
	if err != nil {
		h.writeEndpointError(w, err)
		return
	}

	rel, err := h.Rels.AddSpousal(ctx, familyID, s1, s2, req.MaritalStatus)
	if err != nil {
		switch {
		case errors.Is(err, relationshipstore.ErrSelfRelationship),
			errors.Is(err, relationshipstore.ErrDuplicateRelationship),
			errors.Is(err, relationshipstore.ErrBadMaritalStatus):
			httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.Log.Error("spousal create failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "could not create relationship")
		}
		return
	}
	httpjson.Write(w, http.StatusCreated, rel)
}

type maritalStatusRequest struct {
	MaritalStatus string `json:"marital_status"`
}

// UpdateMaritalStatus handles PUT /relationships/spousal/{relID}/status.
func (h *Handler) UpdateMaritalStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "relID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid relationship id")
		return
	}
	var req maritalStatusRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Rels.UpdateMaritalStatus(ctx, id, req.MaritalStatus); err != nil {
		switch {
		case errors.Is(err, relationshipstore.ErrBadMaritalStatus):
			httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.Error(w, http.StatusNotFound, "relationship not found")
		default:
			h.Log.Error("marital status update failed", zap.String("rel_id", id.Hex()), zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "could not update relationship")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteParentChild handles DELETE /relationships/parent-child/{relID}.
func (h *Handler) DeleteParentChild(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Rels.DeleteParentChild)
}

// DeleteSpousal handles DELETE /relationships/spousal/{relID}.
func (h *Handler) DeleteSpousal(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.Rels.DeleteSpousal)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, del func(context.Context, primitive.ObjectID) (int64, error)) {
	id, err := httpjson.IDParam(r, "relID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid relationship id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := del(ctx, id)
	if err != nil {
		h.Log.Error("relationship delete failed", zap.String("rel_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete relationship")
		return
	}
	if n == 0 {
		httpjson.Error(w, http.StatusNotFound, "relationship not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// familyEdgesResponse is the full edge listing for a family.
type familyEdgesResponse struct {
	ParentChild []models.Relationship        `json:"parent_child"`
	Spousal     []models.SpousalRelationship `json:"spousal"`
}

// ListByFamily handles GET /families/{familyID}/relationships.
func (h *Handler) ListByFamily(w http.ResponseWriter, r *http.Request) {
	familyID, err := httpjson.IDParam(r, "familyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rels, err := h.Rels.ListByFamily(ctx, familyID)
	if err != nil {
		h.Log.Error("relationship list failed", zap.String("family_id", familyID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list relationships")
		return
	}
	spousals, err := h.Rels.ListSpousalByFamily(ctx, familyID)
	if err != nil {
		h.Log.Error("spousal list failed", zap.String("family_id", familyID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list relationships")
		return
	}
	if rels == nil {
		rels = []models.Relationship{}
	}
	if spousals == nil {
		spousals = []models.SpousalRelationship{}
	}
	httpjson.Write(w, http.StatusOK, familyEdgesResponse{ParentChild: rels, Spousal: spousals})
}

func (h *Handler) writeEndpointError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		httpjson.Error(w, http.StatusNotFound, "person not found")
	case errors.Is(err, errCrossFamily):
		httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.Log.Error("relationship endpoint lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load persons")
	}
}
