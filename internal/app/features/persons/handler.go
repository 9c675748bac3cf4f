// Package persons manages individual records: create, direct edits,
// listing and search within a family, and the relatives view.
//
// Direct edits here bypass the approval workflow. They are meant for
// the record's steward; collaborative corrections go through the
// changes feature instead.
package persons

import (
	"context"
	"errors"
	"net/http"
	"strings"

	personstore "github.com/umunna-dev/umunna/internal/app/store/persons"
	relationshipstore "github.com/umunna-dev/umunna/internal/app/store/relationships"
	"github.com/umunna-dev/umunna/internal/app/system/httpjson"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for person management.
type Handler struct {
	Persons *personstore.Store
	Rels    *relationshipstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Persons: personstore.New(db),
		Rels:    relationshipstore.New(db),
		Log:     logger,
	}
}

type createRequest struct {
	FamilyID      string `json:"family_id"`
	FullName      string `json:"full_name"`
	Gender        string `json:"gender"`
	DateOfBirth   string `json:"date_of_birth"`
	DateOfDeath   string `json:"date_of_death"`
	PlaceOfBirth  string `json:"place_of_birth"`
	PlaceOfDeath  string `json:"place_of_death"`
	Occupation    string `json:"occupation"`
	Biography     string `json:"biography"`
	ClanName      string `json:"clan_name"`
	VillageOrigin string `json:"village_origin"`
	IsAlive       bool   `json:"is_alive"`
}

func validGender(g string) bool {
	switch g {
	case "", models.GenderMale, models.GenderFemale, models.GenderOther:
		return true
	}
	return false
}

// Create handles POST /persons.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}
	if strings.TrimSpace(req.FullName) == "" {
		httpjson.Error(w, http.StatusBadRequest, "full_name is required")
		return
	}
	if !validGender(req.Gender) {
		httpjson.Error(w, http.StatusBadRequest, `gender must be "male", "female", or "other"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Persons.Create(ctx, models.Person{
		FamilyID:      familyID,
		FullName:      strings.TrimSpace(req.FullName),
		Gender:        req.Gender,
		DateOfBirth:   req.DateOfBirth,
		DateOfDeath:   req.DateOfDeath,
		PlaceOfBirth:  req.PlaceOfBirth,
		PlaceOfDeath:  req.PlaceOfDeath,
		Occupation:    req.Occupation,
		Biography:     req.Biography,
		ClanName:      req.ClanName,
		VillageOrigin: req.VillageOrigin,
		IsAlive:       req.IsAlive,
	})
	if err != nil {
		h.Log.Error("person create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create person")
		return
	}
	httpjson.Write(w, http.StatusCreated, p)
}

// Get handles GET /persons/{personID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "personID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Persons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "person not found")
			return
		}
		h.Log.Error("person lookup failed", zap.String("person_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load person")
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

type updateRequest struct {
	FullName           *string `json:"full_name"`
	Gender             *string `json:"gender"`
	DateOfBirth        *string `json:"date_of_birth"`
	DateOfDeath        *string `json:"date_of_death"`
	PlaceOfBirth       *string `json:"place_of_birth"`
	PlaceOfDeath       *string `json:"place_of_death"`
	Occupation         *string `json:"occupation"`
	Biography          *string `json:"biography"`
	ClanName           *string `json:"clan_name"`
	VillageOrigin      *string `json:"village_origin"`
	IsAlive            *bool   `json:"is_alive"`
	VerificationStatus *string `json:"verification_status"`
	EditorID           string  `json:"editor_id"`
}

// Update handles PUT /persons/{personID}. Absent fields are left alone.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "personID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	editorID, err := primitive.ObjectIDFromHex(req.EditorID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid editor id")
		return
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		httpjson.Error(w, http.StatusBadRequest, "full_name cannot be blank")
		return
	}
	if req.Gender != nil && !validGender(*req.Gender) {
		httpjson.Error(w, http.StatusBadRequest, `gender must be "male", "female", or "other"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	upd := personstore.Update{
		FullName:           req.FullName,
		Gender:             req.Gender,
		DateOfBirth:        req.DateOfBirth,
		DateOfDeath:        req.DateOfDeath,
		PlaceOfBirth:       req.PlaceOfBirth,
		PlaceOfDeath:       req.PlaceOfDeath,
		Occupation:         req.Occupation,
		Biography:          req.Biography,
		ClanName:           req.ClanName,
		VillageOrigin:      req.VillageOrigin,
		IsAlive:            req.IsAlive,
		VerificationStatus: req.VerificationStatus,
	}
	if err := h.Persons.Update(ctx, id, upd, editorID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "person not found")
			return
		}
		h.Log.Error("person update failed", zap.String("person_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update person")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByFamily handles GET /families/{familyID}/persons. A "q" query
// parameter narrows the list to names containing the query.
func (h *Handler) ListByFamily(w http.ResponseWriter, r *http.Request) {
	familyID, err := httpjson.IDParam(r, "familyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var out []models.Person
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		out, err = h.Persons.SearchByName(ctx, familyID, q)
	} else {
		out, err = h.Persons.ListByFamily(ctx, familyID)
	}
	if err != nil {
		h.Log.Error("person list failed", zap.String("family_id", familyID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list persons")
		return
	}
	if out == nil {
		out = []models.Person{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// Delete handles DELETE /persons/{personID}. Relationship edges
// referencing the person are removed with it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "personID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, err := h.Persons.Delete(ctx, id)
	if err != nil {
		h.Log.Error("person delete failed", zap.String("person_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete person")
		return
	}
	if n == 0 {
		httpjson.Error(w, http.StatusNotFound, "person not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
