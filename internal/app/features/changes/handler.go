// Package changes is the HTTP surface of the edit-approval workflow:
// proposing field changes, listing pending proposals, approving and
// rejecting, and reading a person's edit history.
package changes

import (
	"context"
	"errors"
	"net/http"

	changestore "github.com/umunna-dev/umunna/internal/app/store/changes"
	historystore "github.com/umunna-dev/umunna/internal/app/store/history"
	personstore "github.com/umunna-dev/umunna/internal/app/store/persons"
	"github.com/umunna-dev/umunna/internal/app/system/httpjson"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"github.com/umunna-dev/umunna/internal/app/workflow"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the change workflow endpoints.
type Handler struct {
	Workflow *workflow.Service
	Persons  *personstore.Store
	Changes  *changestore.Store
	History  *historystore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, svc *workflow.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Workflow: svc,
		Persons:  personstore.New(db),
		Changes:  changestore.New(db),
		History:  historystore.New(db),
		Log:      logger,
	}
}

// proposableFields maps a field name in a proposal to a getter on the
// person record. Only these fields flow through the workflow; structural
// data (relationships) and system fields do not.
var proposableFields = map[string]func(models.Person) string{
	"full_name":      func(p models.Person) string { return p.FullName },
	"gender":         func(p models.Person) string { return p.Gender },
	"date_of_birth":  func(p models.Person) string { return p.DateOfBirth },
	"date_of_death":  func(p models.Person) string { return p.DateOfDeath },
	"place_of_birth": func(p models.Person) string { return p.PlaceOfBirth },
	"place_of_death": func(p models.Person) string { return p.PlaceOfDeath },
	"occupation":     func(p models.Person) string { return p.Occupation },
	"biography":      func(p models.Person) string { return p.Biography },
	"clan_name":      func(p models.Person) string { return p.ClanName },
	"village_origin": func(p models.Person) string { return p.VillageOrigin },
}

type proposeRequest struct {
	PersonID   string            `json:"person_id"`
	ProposerID string            `json:"proposer_id"`
	Fields     map[string]string `json:"fields"`
	Reason     string            `json:"reason"`
}

// Propose handles POST /changes. The current values are read from the
// person record at submission time, so the stored diff reflects what
// the record said when the proposal was made.
func (h *Handler) Propose(w http.ResponseWriter, r *http.Request) {
	var req proposeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	personID, err := primitive.ObjectIDFromHex(req.PersonID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}
	proposerID, err := primitive.ObjectIDFromHex(req.ProposerID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid proposer id")
		return
	}
	if len(req.Fields) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "fields is required")
		return
	}
	for field := range req.Fields {
		if _, ok := proposableFields[field]; !ok {
			httpjson.Error(w, http.StatusUnprocessableEntity, "field cannot be changed through a proposal: "+field)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	person, err := h.Persons.GetByID(ctx, personID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "person not found")
			return
		}
		h.Log.Error("person lookup failed", zap.String("person_id", personID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load person")
		return
	}

	current := make(map[string]string, len(req.Fields))
	for field := range req.Fields {
		current[field] = proposableFields[field](person)
	}

	pc, err := h.Workflow.Propose(ctx, workflow.ProposeInput{
		PersonID:   personID,
		FamilyID:   person.FamilyID,
		ProposerID: proposerID,
		Current:    current,
		Proposed:   req.Fields,
		Reason:     req.Reason,
	})
	if err != nil {
		if errors.Is(err, workflow.ErrNoChange) {
			httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.Log.Error("propose failed", zap.String("person_id", personID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create proposal")
		return
	}
	httpjson.Write(w, http.StatusCreated, pc)
}

// ListPending handles GET /persons/{personID}/changes.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	personID, err := httpjson.IDParam(r, "personID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := h.Workflow.ListPending(ctx, personID)
	if err != nil {
		h.Log.Error("pending list failed", zap.String("person_id", personID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list pending changes")
		return
	}
	if pending == nil {
		pending = []models.PendingChange{}
	}
	httpjson.Write(w, http.StatusOK, pending)
}

// ListByFamily handles GET /families/{familyID}/changes. All statuses,
// newest first; the review screen works from this.
func (h *Handler) ListByFamily(w http.ResponseWriter, r *http.Request) {
	familyID, err := httpjson.IDParam(r, "familyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Changes.ListByFamily(ctx, familyID)
	if err != nil {
		h.Log.Error("family change list failed", zap.String("family_id", familyID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list changes")
		return
	}
	if out == nil {
		out = []models.PendingChange{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

type resolveRequest struct {
	ResolverID string `json:"resolver_id"`
	Notes      string `json:"notes"`
	Reason     string `json:"reason"`
}

// Approve handles POST /changes/{changeID}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	changeID, err := httpjson.IDParam(r, "changeID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid change id")
		return
	}
	var req resolveRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resolverID, err := primitive.ObjectIDFromHex(req.ResolverID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid resolver id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Workflow.Approve(ctx, changeID, resolverID, req.Notes); err != nil {
		var partial *workflow.PartialApplyError
		switch {
		case errors.Is(err, workflow.ErrNotFound):
			httpjson.Error(w, http.StatusNotFound, "change not found")
		case errors.As(err, &partial):
			// Part of the approval landed. 500 tells the caller to
			// retry; the log names the failed step.
			h.Log.Error("approval left partial state",
				zap.String("change_id", changeID.Hex()),
				zap.String("step", partial.Step),
				zap.Error(partial.Err))
			httpjson.Error(w, http.StatusInternalServerError, err.Error())
		default:
			h.Log.Error("approve failed", zap.String("change_id", changeID.Hex()), zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "could not approve change")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reject handles POST /changes/{changeID}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	changeID, err := httpjson.IDParam(r, "changeID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid change id")
		return
	}
	var req resolveRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resolverID, err := primitive.ObjectIDFromHex(req.ResolverID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid resolver id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Workflow.Reject(ctx, changeID, resolverID, req.Reason); err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "change not found")
			return
		}
		h.Log.Error("reject failed", zap.String("change_id", changeID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not reject change")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HistoryByPerson handles GET /persons/{personID}/history.
func (h *Handler) HistoryByPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := httpjson.IDParam(r, "personID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := h.History.ListByPerson(ctx, personID, 0)
	if err != nil {
		h.Log.Error("history list failed", zap.String("person_id", personID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list history")
		return
	}
	if entries == nil {
		entries = []models.EditHistory{}
	}
	httpjson.Write(w, http.StatusOK, entries)
}
