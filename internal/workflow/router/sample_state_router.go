package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/openfsis/fsis/internal/workflow/model"
	"github.com/openfsis/fsis/internal/workflow/service"
)

// SampleStateRouter serves the per-sample workflow endpoints: recorded
// state rows, node completion, and the resolved step list.
type SampleStateRouter struct {
	ss *service.StateService
	rs *service.ResolveService
}

func NewSampleStateRouter(ss *service.StateService, rs *service.ResolveService) *SampleStateRouter {
	return &SampleStateRouter{ss: ss, rs: rs}
}

// HandleGetSampleStates handles GET /api/samples/{sampleID}/workflow requests
func (sr *SampleStateRouter) HandleGetSampleStates(w http.ResponseWriter, r *http.Request) {
	sampleID, err := uuid.Parse(r.PathValue("sampleID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid sampleID: %v", err), http.StatusBadRequest)
		return
	}

	states, err := sr.ss.ListStatesBySample(r.Context(), sampleID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get workflow states: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(states); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleRecordNodeCompletion handles POST /api/samples/{sampleID}/workflow requests.
// Recording the same node twice updates the existing row rather than
// creating a duplicate.
func (sr *SampleStateRouter) HandleRecordNodeCompletion(w http.ResponseWriter, r *http.Request) {
	sampleID, err := uuid.Parse(r.PathValue("sampleID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid sampleID: %v", err), http.StatusBadRequest)
		return
	}

	var recordReq model.RecordWorkflowStateDTO
	if err := json.NewDecoder(r.Body).Decode(&recordReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	state, err := sr.ss.RecordNodeCompletion(r.Context(), sampleID, &recordReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to record node completion: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(state); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleResolveWorkflow handles GET /api/samples/{sampleID}/workflow/resolved requests
func (sr *SampleStateRouter) HandleResolveWorkflow(w http.ResponseWriter, r *http.Request) {
	sampleID, err := uuid.Parse(r.PathValue("sampleID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid sampleID: %v", err), http.StatusBadRequest)
		return
	}

	resolved, err := sr.rs.ResolveForSample(r.Context(), sampleID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to resolve workflow: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resolved); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleUpdateState handles PUT /api/workflow/states/{stateID} requests
func (sr *SampleStateRouter) HandleUpdateState(w http.ResponseWriter, r *http.Request) {
	stateID, err := uuid.Parse(r.PathValue("stateID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid stateID: %v", err), http.StatusBadRequest)
		return
	}

	var updateReq model.UpdateWorkflowStateDTO
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	state, err := sr.ss.UpdateStateByID(r.Context(), stateID, &updateReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to update workflow state: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(state); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}
