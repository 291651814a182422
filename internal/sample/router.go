package sample

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/openfsis/fsis/utils"
)

// Router serves the sample registry endpoints.
type Router struct {
	svc *Service
}

func NewRouter(svc *Service) *Router {
	return &Router{svc: svc}
}

// RegisterRoutes attaches the sample endpoints to the mux.
func (sr *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/samples", sr.HandleCreateSample)
	mux.HandleFunc("GET /api/samples", sr.HandleGetSamples)
	mux.HandleFunc("GET /api/samples/{sampleID}", sr.HandleGetSampleByID)
	mux.HandleFunc("PUT /api/samples/{sampleID}", sr.HandleUpdateSample)
}

// HandleCreateSample handles POST /api/samples requests
func (sr *Router) HandleCreateSample(w http.ResponseWriter, r *http.Request) {
	var createReq CreateSampleDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	smp, err := sr.svc.CreateSample(r.Context(), &createReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to create sample: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(smp); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleGetSamples handles GET /api/samples requests
// Optional Query Params: inspectionId, offset, limit
func (sr *Router) HandleGetSamples(w http.ResponseWriter, r *http.Request) {
	var filter SampleFilter

	if inspectionID := r.URL.Query().Get("inspectionId"); inspectionID != "" {
		parsed, err := uuid.Parse(inspectionID)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid inspectionId: %v", err), http.StatusBadRequest)
			return
		}
		filter.InspectionID = &parsed
	}

	offset, err := utils.ParseOptionalInt(r.URL.Query(), "offset")
	if err != nil {
		http.Error(w, "invalid 'offset' query parameter, must be an integer", http.StatusBadRequest)
		return
	}
	filter.Offset = offset

	limit, err := utils.ParseOptionalInt(r.URL.Query(), "limit")
	if err != nil {
		http.Error(w, "invalid 'limit' query parameter, must be an integer", http.StatusBadRequest)
		return
	}
	filter.Limit = limit

	samples, err := sr.svc.GetSamples(r.Context(), filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get samples: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(samples); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleGetSampleByID handles GET /api/samples/{sampleID} requests
func (sr *Router) HandleGetSampleByID(w http.ResponseWriter, r *http.Request) {
	sampleID, err := uuid.Parse(r.PathValue("sampleID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid sampleID: %v", err), http.StatusBadRequest)
		return
	}

	smp, err := sr.svc.GetSampleByID(r.Context(), sampleID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get sample: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(smp); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleUpdateSample handles PUT /api/samples/{sampleID} requests
func (sr *Router) HandleUpdateSample(w http.ResponseWriter, r *http.Request) {
	sampleID, err := uuid.Parse(r.PathValue("sampleID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid sampleID: %v", err), http.StatusBadRequest)
		return
	}

	var updateReq UpdateSampleDTO
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	smp, err := sr.svc.UpdateSample(r.Context(), sampleID, &updateReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to update sample: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(smp); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}
