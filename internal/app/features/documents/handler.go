// Package documents manages uploaded family records: certificates,
// photographs, letters. The bytes go to the blob store; Mongo keeps the
// metadata row, and downloads go out as presigned URLs.
package documents

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	documentstore "github.com/umunna-dev/umunna/internal/app/store/documents"
	"github.com/umunna-dev/umunna/internal/app/storage"
	"github.com/umunna-dev/umunna/internal/app/system/httpjson"
	"github.com/umunna-dev/umunna/internal/app/system/timeouts"
	"github.com/umunna-dev/umunna/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxUploadBytes caps one document upload.
const maxUploadBytes = 32 << 20

// Handler holds dependencies for document management.
type Handler struct {
	Documents *documentstore.Store
	Blobs     *storage.BlobStore
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, blobs *storage.BlobStore, logger *zap.Logger) *Handler {
	return &Handler{
		Documents: documentstore.New(db),
		Blobs:     blobs,
		Log:       logger,
	}
}

// Upload handles POST /documents as multipart/form-data with fields
// person_id, family_id, uploader_id, title, kind, and the file part
// "file". The blob write happens first; if the metadata insert then
// fails the blob is deleted again on a best-effort basis.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.Blobs == nil {
		httpjson.Error(w, http.StatusServiceUnavailable, "document storage is not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	personID, err := primitive.ObjectIDFromHex(r.FormValue("person_id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}
	familyID, err := primitive.ObjectIDFromHex(r.FormValue("family_id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid family id")
		return
	}
	uploaderID, err := primitive.ObjectIDFromHex(r.FormValue("uploader_id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid uploader id")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		httpjson.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	// Only the base name goes into the object key.
	filename := filepath.Base(header.Filename)
	key, err := h.Blobs.Put(ctx, familyID.Hex(), filename, contentType, file, header.Size)
	if err != nil {
		h.Log.Error("document blob write failed", zap.String("family_id", familyID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not store document")
		return
	}

	doc, err := h.Documents.Create(ctx, models.DocumentRecord{
		PersonID:    personID,
		FamilyID:    familyID,
		UploaderID:  uploaderID,
		Title:       title,
		Kind:        r.FormValue("kind"),
		BlobRef:     key,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		h.Log.Error("document record create failed", zap.String("blob_ref", key), zap.Error(err))
		if delErr := h.Blobs.Delete(ctx, key); delErr != nil {
			h.Log.Warn("orphaned blob cleanup failed", zap.String("blob_ref", key), zap.Error(delErr))
		}
		httpjson.Error(w, http.StatusInternalServerError, "could not store document")
		return
	}
	httpjson.Write(w, http.StatusCreated, doc)
}

// documentResponse is a document record plus its download link.
type documentResponse struct {
	models.DocumentRecord
	DownloadURL string `json:"download_url,omitempty"`
}

// Get handles GET /documents/{documentID}. The response carries a
// time-limited presigned download URL.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "documentID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid document id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	doc, err := h.Documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "document not found")
			return
		}
		h.Log.Error("document lookup failed", zap.String("document_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load document")
		return
	}

	resp := documentResponse{DocumentRecord: doc}
	if h.Blobs != nil {
		url, err := h.Blobs.PresignedURL(ctx, doc.BlobRef)
		if err != nil {
			h.Log.Warn("presign failed", zap.String("blob_ref", doc.BlobRef), zap.Error(err))
		} else {
			resp.DownloadURL = url
		}
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// ListByPerson handles GET /persons/{personID}/documents.
func (h *Handler) ListByPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := httpjson.IDParam(r, "personID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Documents.ListByPerson(ctx, personID)
	if err != nil {
		h.Log.Error("document list failed", zap.String("person_id", personID.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not list documents")
		return
	}
	if out == nil {
		out = []models.DocumentRecord{}
	}
	httpjson.Write(w, http.StatusOK, out)
}

// Delete handles DELETE /documents/{documentID}. The metadata row goes
// first; a blob delete failure leaves an orphaned object and is only
// logged.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.IDParam(r, "documentID")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid document id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	doc, err := h.Documents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "document not found")
			return
		}
		h.Log.Error("document lookup failed", zap.String("document_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load document")
		return
	}

	if _, err := h.Documents.Delete(ctx, id); err != nil {
		h.Log.Error("document delete failed", zap.String("document_id", id.Hex()), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete document")
		return
	}
	if h.Blobs != nil {
		if err := h.Blobs.Delete(ctx, doc.BlobRef); err != nil {
			h.Log.Warn("blob delete failed", zap.String("blob_ref", doc.BlobRef), zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
