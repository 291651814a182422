package uploads

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type HTTPHandler struct {
	Service *UploadService
}

func NewHTTPHandler(service *UploadService) *HTTPHandler {
	return &HTTPHandler{Service: service}
}

// RegisterRoutes attaches the upload endpoints to the mux.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/uploads", h.Upload)
	mux.HandleFunc("GET /api/uploads/{key}", h.Download)
	mux.HandleFunc("GET /api/samples/{sampleID}/uploads", h.ListBySample)
}

func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Max memory 32MB
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, `{"error": "failed to parse form"}`, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, `{"error": "file is required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	params := UploadParams{FieldName: r.FormValue("field")}
	if v := r.FormValue("sampleId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, `{"error": "invalid sampleId"}`, http.StatusBadRequest)
			return
		}
		params.SampleID = &id
	}
	if v := r.FormValue("nodeId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, `{"error": "invalid nodeId"}`, http.StatusBadRequest)
			return
		}
		params.NodeID = &id
	}

	metadata, err := h.Service.Upload(r.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"), params)
	if err != nil {
		slog.ErrorContext(r.Context(), "Upload failed", "error", err)
		http.Error(w, `{"error": "upload failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(metadata)
}

func (h *HTTPHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.Error(w, `{"error": "key is required"}`, http.StatusBadRequest)
		return
	}

	reader, contentType, err := h.Service.Download(r.Context(), key)
	if err != nil {
		http.Error(w, `{"error": "file not found"}`, http.StatusNotFound)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	io.Copy(w, reader)
}

func (h *HTTPHandler) ListBySample(w http.ResponseWriter, r *http.Request) {
	sampleID, err := uuid.Parse(r.PathValue("sampleID"))
	if err != nil {
		http.Error(w, `{"error": "invalid sample id"}`, http.StatusBadRequest)
		return
	}

	files, err := h.Service.ListBySample(r.Context(), sampleID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list evidence files", "error", err)
		http.Error(w, `{"error": "failed to list files"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}
