// internal/app/features/persons/relatives.go
package persons

import (
	"context"
	"errors"
	"net/http"

	"github.com/umunna-dev/umunna/internal/app/system/httpjson"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// relativeEntry is one person in a relatives listing, with the spouse
// edge's marital status when the relation is a spouse.
type relativeEntry struct {
	Person        models.Person `json:"person"`
	MaritalStatus string        `json:"marital_status,omitempty"`
}

// relativesResponse groups a person's immediate relations.
type relativesResponse struct {
	Parents  []relativeEntry `json:"parents"`
	Children []relativeEntry `json:"children"`
	Spouses  []relativeEntry `json:"spouses"`
	Siblings []relativeEntry `json:"siblings"`
}

// Relatives handles GET /persons/{personID}/relatives. Siblings are
// derived: every other child of any of the person's parents counts,
// half-siblings included.
func (h *Handler) Relatives(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "personID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Persons.GetByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "person not found")
			return
		}
		h.Log.Error("person lookup failed", zap.String("person_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load person")
		return
	}

	resp := relativesResponse{
		Parents:  []relativeEntry{},
		Children: []relativeEntry{},
		Spouses:  []relativeEntry{},
		Siblings: []relativeEntry{},
	}

	parentEdges, err := h.Rels.ParentsOf(ctx, id)
	if err != nil {
		h.relativesFail(w, id, "parents", err)
		return
	}
	var parentIDs []primitive.ObjectID
	for _, e := range parentEdges {
		p, err := h.loadRelative(ctx, e.ParentID)
		if err != nil {
			h.relativesFail(w, id, "parents", err)
			return
		}
		if p != nil {
			resp.Parents = append(resp.Parents, relativeEntry{Person: *p})
		}
		parentIDs = append(parentIDs, e.ParentID)
	}

	childEdges, err := h.Rels.ChildrenOf(ctx, id)
	if err != nil {
		h.relativesFail(w, id, "children", err)
		return
	}
	for _, e := range childEdges {
		p, err := h.loadRelative(ctx, e.ChildID)
		if err != nil {
			h.relativesFail(w, id, "children", err)
			return
		}
		if p != nil {
			resp.Children = append(resp.Children, relativeEntry{Person: *p})
		}
	}

	spouseEdges, err := h.Rels.SpousesOf(ctx, id)
	if err != nil {
		h.relativesFail(w, id, "spouses", err)
		return
	}
	for _, e := range spouseEdges {
		other := e.Spouse1ID
		if other == id {
			other = e.Spouse2ID
		}
		p, err := h.loadRelative(ctx, other)
		if err != nil {
			h.relativesFail(w, id, "spouses", err)
			return
		}
		if p != nil {
			resp.Spouses = append(resp.Spouses, relativeEntry{Person: *p, MaritalStatus: e.MaritalStatus})
		}
	}

	// Siblings: other children of this person's parents, deduplicated
	// across shared parents.
	seen := map[primitive.ObjectID]bool{id: true}
	for _, parentID := range parentIDs {
		sibEdges, err := h.Rels.ChildrenOf(ctx, parentID)
		if err != nil {
			h.relativesFail(w, id, "siblings", err)
			return
		}
		for _, e := range sibEdges {
			if seen[e.ChildID] {
				continue
			}
			seen[e.ChildID] = true
			p, err := h.loadRelative(ctx, e.ChildID)
			if err != nil {
				h.relativesFail(w, id, "siblings", err)
				return
			}
			if p != nil {
				resp.Siblings = append(resp.Siblings, relativeEntry{Person: *p})
			}
		}
	}

	httpjson.Write(w, http.StatusOK, resp)
}

// loadRelative resolves an edge endpoint. A dangling edge (person row
// already deleted) is skipped rather than failing the whole view.
func (h *Handler) loadRelative(ctx context.Context, id primitive.ObjectID) (*models.Person, error) {
	p, err := h.Persons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (h *Handler) relativesFail(w http.ResponseWriter, id primitive.ObjectID, part string, err error) {
	h.Log.Error("relatives lookup failed",
		zap.String("person_id", id.Hex()),
		zap.String("part", part),
		zap.Error(err))
	httpjson.Error(w, http.StatusInternalServerError, "could not load relatives")
}
