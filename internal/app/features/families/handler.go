// Package families manages the family containers every other record
// belongs to.
package families

import (
	"context"
	"errors"
	"net/http"
	"strings"

	familystore "github.com/umunna-dev/umunna/internal/app/store/families"
	personstore "github.com/umunna-dev/umunna/internal/app/store/persons"
	relationshipstore "github.com/umunna-dev/umunna/internal/app/store/relationships"
	"github.com/umunna-dev/umunna/internal/app/system/httpjson"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for family management.
type Handler struct {
	Families *familystore.Store
	Persons  *personstore.Store
	Rels     *relationshipstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Families: familystore.New(db),
		Persons:  personstore.New(db),
		Rels:     relationshipstore.New(db),
		Log:      logger,
	}
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /families.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpjson.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, err := h.Families.Create(ctx, models.Family{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, familystore.ErrDuplicateFamilyName) {
			httpjson.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("family create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create family")
		return
	}
	httpjson.Write(w, http.StatusCreated, f)
}

// Get handles GET /families/{familyID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "familyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	f, err := h.Families.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "family not found")
			return
		}
		h.Log.Error("family lookup failed", zap.String("family_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load family")
		return
	}
	httpjson.Write(w, http.StatusOK, f)
}

// List handles GET /families.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	fams, err := h.Families.List(ctx)
	if err != nil {
		h.Log.Error("family list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list families")
		return
	}
	if fams == nil {
		fams = []models.Family{}
	}
	httpjson.Write(w, http.StatusOK, fams)
}

// Update handles PUT /families/{familyID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "familyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Families.UpdateInfo(ctx, id, req.Name, req.Description); err != nil {
		if errors.Is(err, familystore.ErrDuplicateFamilyName) {
			httpjson.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("family update failed", zap.String("family_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update family")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /families/{familyID}. The family's persons and
// relationship edges go with it. The deletes are separate operations; a
// failure part-way is logged and reported so the caller can retry.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "familyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, err := h.Families.Delete(ctx, id)
	if err != nil {
		h.Log.Error("family delete failed", zap.String("family_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete family")
		return
	}
	if n == 0 {
		httpjson.Error(w, http.StatusNotFound, "family not found")
		return
	}
	if _, err := h.Rels.DeleteByFamily(ctx, id); err != nil {
		h.Log.Error("family edge cleanup failed", zap.String("family_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "family deleted but relationship cleanup failed")
		return
	}
	if _, err := h.Persons.DeleteByFamily(ctx, id); err != nil {
		h.Log.Error("family person cleanup failed", zap.String("family_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "family deleted but person cleanup failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
