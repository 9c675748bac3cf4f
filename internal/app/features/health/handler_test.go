package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/umunna-dev/umunna/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_Healthy(t *testing.T) {
	db := testutil.SetupTestDB(t)

	h := NewHandler(db.Client(), nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Blobs    string `json:"blobs"`
	}
	testutil.DecodeJSONResponse(t, rec, &resp)

	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Database != "connected" {
		t.Errorf("expected database connected, got %q", resp.Database)
	}
	if resp.Blobs != "" {
		t.Errorf("expected blobs omitted when not configured, got %q", resp.Blobs)
	}
}

func TestServe_ContentType(t *testing.T) {
	db := testutil.SetupTestDB(t)

	h := NewHandler(db.Client(), nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Serve(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json content type, got %q", ct)
	}
}
