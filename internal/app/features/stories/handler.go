// Package stories manages oral-history entries attached to persons.
// Bodies are sanitized on the way in; what is stored is what renders.
package stories

import (
	"context"
	"errors"
	"net/http"
	"strings"

	storystore "github.com/umunna-dev/umunna/internal/app/store/stories"
	"github.com/umunna-dev/umunna/internal/app/system/httpjson"
	"github.com/umunna-dev/umunna/internal/app/system/htmlsanitize"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for story management.
type Handler struct {
	Stories *storystore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Stories: storystore.New(db),
		Log:     logger,
	}
}

type createRequest struct {
	PersonID      string `json:"person_id"`
	FamilyID      string `json:"family_id"`
	ContributorID string `json:"contributor_id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	AudioRef      string `json:"audio_ref"`
}

// Create handles POST /stories.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	personID, err := primitive.ObjectIDFromHex(req.PersonID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}
	contributorID, err := primitive.ObjectIDFromHex(req.ContributorID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid contributor id")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	st, err := h.Stories.Create(ctx, models.Story{
		PersonID:      personID,
		FamilyID:      familyID,
		ContributorID: contributorID,
		Title:         strings.TrimSpace(req.Title),
		Body:          htmlsanitize.Sanitize(req.Body),
		AudioRef:      req.AudioRef,
	})
	if err != nil {
		h.Log.Error("story create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create story")
		return
	}
	httpjson.Write(w, http.StatusCreated, st)
}

// Get handles GET /stories/{storyID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "storyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid story id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := h.Stories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "story not found")
			return
		}
		h.Log.Error("story lookup failed", zap.String("story_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load story")
		return
	}
	httpjson.Write(w, http.StatusOK, st)
}

type updateRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Update handles PUT /stories/{storyID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "storyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid story id")
		return
	}
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Stories.UpdateContent(ctx, id, strings.TrimSpace(req.Title), htmlsanitize.Sanitize(req.Body)); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "story not found")
			return
		}
		h.Log.Error("story update failed", zap.String("story_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update story")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByPerson handles GET /persons/{personID}/stories.
func (h *Handler) ListByPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := httpjson.IDParam(r, "personID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Stories.ListByPerson(ctx, personID)
	if err != nil {
		h.Log.Error("story list failed", zap.String("person_id", personID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list stories")
		return
	}
	if out == nil {
		out = []models.Story{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// Delete handles DELETE /stories/{storyID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "storyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid story id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Stories.Delete(ctx, id)
	if err != nil {
		h.Log.Error("story delete failed", zap.String("story_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete story")
		return
	}
	if n == 0 {
		httpjson.Error(w, http.StatusNotFound, "story not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
