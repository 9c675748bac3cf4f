// Package gedcomio moves whole family trees in and out of the service
// as GEDCOM 5.5.5 files. Export walks the stored records into a graph
// and encodes it; import decodes a file and creates the records.
package gedcomio

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	familystore "github.com/umunna-dev/umunna/internal/app/store/families"
	personstore "github.com/umunna-dev/umunna/internal/app/store/persons"
	relationshipstore "github.com/umunna-dev/umunna/internal/app/store/relationships"
	"github.com/umunna-dev/umunna/internal/app/system/httpjson"
	"github.com/umunna-dev/umunna/internal/app/system/metrics"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"github.com/umunna-dev/umunna/internal/gedcom"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxImportBytes caps one GEDCOM upload.
const maxImportBytes = 16 << 20

// Handler holds dependencies for GEDCOM transfer.
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

// Export handles GET /families/{familyID}/gedcom. The whole family
// goes out as one lineage-linked file.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	familyID, err := httpjson.IDParam(r, "familyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	family, err := h.Families.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "family not found")
			return
		}
		h.Log.Error("family lookup failed", zap.String("family_id", familyID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load family")
		return
	}

	graph, err := h.buildGraph(ctx, familyID)
	if err != nil {
		h.Log.Error("gedcom export failed", zap.String("family_id", familyID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not export family")
		return
	}

	out := gedcom.Encode(graph)
	metrics.GedcomExports.Inc()
	h.Log.Info("gedcom exported",
		zap.String("family_id", familyID.Hex()),
		zap.Int("persons", len(graph.Persons)))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", family.Name+".ged"))
	_, _ = w.Write([]byte(out))
}

// buildGraph loads a family's persons and edges into a transfer graph.
// Person ids become the graph keys, so edges carry over directly.
func (h *Handler) buildGraph(ctx context.Context, familyID primitive.ObjectID) (gedcom.Graph, error) {
	var g gedcom.Graph

	people, err := h.Persons.ListByFamily(ctx, familyID)
	if err != nil {
		return g, err
	}
	for _, p := range people {
		g.Persons = append(g.Persons, gedcom.Person{
			ID:            p.ID.Hex(),
			FullName:      p.FullName,
			Gender:        p.Gender,
			DateOfBirth:   p.DateOfBirth,
			DateOfDeath:   p.DateOfDeath,
			PlaceOfBirth:  p.PlaceOfBirth,
			PlaceOfDeath:  p.PlaceOfDeath,
			Occupation:    p.Occupation,
			Biography:     p.Biography,
			ClanName:      p.ClanName,
			VillageOrigin: p.VillageOrigin,
		})
	}

	rels, err := h.Rels.ListByFamily(ctx, familyID)
	if err != nil {
		return g, err
	}
	for _, e := range rels {
		g.Parents = append(g.Parents, gedcom.ParentChild{
			ParentID: e.ParentID.Hex(),
			ChildID:  e.ChildID.Hex(),
		})
	}

	spousals, err := h.Rels.ListSpousalByFamily(ctx, familyID)
	if err != nil {
		return g, err
	}
	for _, e := range spousals {
		g.Spouses = append(g.Spouses, gedcom.Spouse{
			Spouse1ID: e.Spouse1ID.Hex(),
			Spouse2ID: e.Spouse2ID.Hex(),
		})
	}
	return g, nil
}

// importReport is the JSON response of an import.
type importReport struct {
	PersonsCreated       int                  `json:"persons_created"`
	ParentChildCreated   int                  `json:"parent_child_created"`
	SpousalCreated       int                  `json:"spousal_created"`
	SkippedLines         []gedcom.SkippedLine `json:"skipped_lines"`
	RelationshipFailures []string             `json:"relationship_failures,omitempty"`
}

// Import handles POST /families/{familyID}/gedcom. The decoded persons
// and edges are created inside the target family. Decoding is
// best-effort; whatever the codec skipped is reported back, and an edge
// whose endpoints did not survive the decode is reported as a
// relationship failure rather than failing the import.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	familyID, err := httpjson.IDParam(r, "familyID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	if _, err := h.Families.GetByID(ctx, familyID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "family not found")
			return
		}
		h.Log.Error("family lookup failed", zap.String("family_id", familyID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load family")
		return
	}

	graph, skipped, err := gedcom.Decode(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "could not read GEDCOM input: "+err.Error())
		return
	}

	report := importReport{SkippedLines: skipped}
	if report.SkippedLines == nil {
		report.SkippedLines = []gedcom.SkippedLine{}
	}

	// Decoded xrefs map to freshly created person ids.
	idByXref := make(map[string]primitive.ObjectID, len(graph.Persons))
	for _, gp := range graph.Persons {
		p, err := h.Persons.Create(ctx, models.Person{
			FamilyID:      familyID,
			FullName:      gp.FullName,
			Gender:        gp.Gender,
			DateOfBirth:   gp.DateOfBirth,
			DateOfDeath:   gp.DateOfDeath,
			PlaceOfBirth:  gp.PlaceOfBirth,
			PlaceOfDeath:  gp.PlaceOfDeath,
			Occupation:    gp.Occupation,
			Biography:     gp.Biography,
			ClanName:      gp.ClanName,
			VillageOrigin: gp.VillageOrigin,
			IsAlive:       gp.DateOfDeath == "",
		})
		if err != nil {
			h.Log.Error("gedcom person create failed",
				zap.String("family_id", familyID.Hex()),
				zap.String("xref", gp.ID),
				zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "import failed while creating persons")
			return
		}
		idByXref[gp.ID] = p.ID
		report.PersonsCreated++
	}

	for _, e := range graph.Parents {
		parentID, okP := idByXref[e.ParentID]
		childID, okC := idByXref[e.ChildID]
		if !okP || !okC {
			report.RelationshipFailures = append(report.RelationshipFailures,
				fmt.Sprintf("parent-child %s -> %s references an unknown person", e.ParentID, e.ChildID))
			continue
		}
		if _, err := h.Rels.AddParentChild(ctx, familyID, parentID, childID); err != nil {
			report.RelationshipFailures = append(report.RelationshipFailures,
				fmt.Sprintf("parent-child %s -> %s: %v", e.ParentID, e.ChildID, err))
			continue
		}
		report.ParentChildCreated++
	}

	for _, e := range graph.Spouses {
		s1, ok1 := idByXref[e.Spouse1ID]
		s2, ok2 := idByXref[e.Spouse2ID]
		if !ok1 || !ok2 {
			report.RelationshipFailures = append(report.RelationshipFailures,
				fmt.Sprintf("spousal %s - %s references an unknown person", e.Spouse1ID, e.Spouse2ID))
			continue
		}
		if _, err := h.Rels.AddSpousal(ctx, familyID, s1, s2, models.MaritalMarried); err != nil {
			report.RelationshipFailures = append(report.RelationshipFailures,
				fmt.Sprintf("spousal %s - %s: %v", e.Spouse1ID, e.Spouse2ID, err))
			continue
		}
		report.SpousalCreated++
	}

	metrics.GedcomImports.Inc()
	h.Log.Info("gedcom imported",
		zap.String("family_id", familyID.Hex()),
		zap.Int("persons", report.PersonsCreated),
		zap.Int("skipped_lines", len(report.SkippedLines)))
	httpjson.Write(w, http.StatusOK, report)
}
