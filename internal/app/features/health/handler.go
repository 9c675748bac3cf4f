package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/umunna-dev/umunna/internal/app/storage"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Blobs  *storage.BlobStore
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. Blobs may be nil when the
// blob store is not configured.
func NewHandler(client *mongo.Client, blobs *storage.BlobStore, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Blobs:  blobs,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Blobs    string `json:"blobs,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "blobs":"connected" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
//
// A blob store failure is reported but does not fail the check; record
// reads and the approval workflow work without it.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Blobs != nil {
		resp.Blobs = "connected"
		if err := h.Blobs.Ping(ctx); err != nil {
			h.Log.Warn("health-check: blob store ping failed", zap.Error(err))
			resp.Blobs = "disconnected"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
