package router

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/openfsis/fsis/internal/workflow/model"
	"github.com/openfsis/fsis/internal/workflow/service"
)

// WorkflowRouter serves the workflow definition endpoints: the read-only
// graph used by the field app, plus the admin CRUD surface.
type WorkflowRouter struct {
	ns *service.NodeService
	ts *service.TransitionService
}

func NewWorkflowRouter(ns *service.NodeService, ts *service.TransitionService) *WorkflowRouter {
	return &WorkflowRouter{ns: ns, ts: ts}
}

// HandleGetNodes handles GET /api/workflow/nodes requests
// Optional Query Params: includeInactive
func (wr *WorkflowRouter) HandleGetNodes(w http.ResponseWriter, r *http.Request) {
	var (
		nodes []model.WorkflowNode
		err   error
	)
	if r.URL.Query().Get("includeInactive") == "true" {
		nodes, err = wr.ns.ListNodes(r.Context())
	} else {
		nodes, err = wr.ns.ListActiveNodes(r.Context())
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get workflow nodes: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(nodes); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleGetNodeByID handles GET /api/workflow/nodes/{nodeID} requests
func (wr *WorkflowRouter) HandleGetNodeByID(w http.ResponseWriter, r *http.Request) {
	nodeID, err := uuid.Parse(r.PathValue("nodeID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid nodeID: %v", err), http.StatusBadRequest)
		return
	}

	node, err := wr.ns.GetNodeByID(r.Context(), nodeID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get workflow node: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(node); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleCreateNode handles POST /api/admin/workflow/nodes requests
func (wr *WorkflowRouter) HandleCreateNode(w http.ResponseWriter, r *http.Request) {
	var createReq model.CreateWorkflowNodeDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	node, err := wr.ns.CreateNode(r.Context(), &createReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to create workflow node: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(node); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleUpdateNode handles PUT /api/admin/workflow/nodes/{nodeID} requests
func (wr *WorkflowRouter) HandleUpdateNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := uuid.Parse(r.PathValue("nodeID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid nodeID: %v", err), http.StatusBadRequest)
		return
	}

	var updateReq model.UpdateWorkflowNodeDTO
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	node, err := wr.ns.UpdateNode(r.Context(), nodeID, &updateReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to update workflow node: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(node); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleDeleteNode handles DELETE /api/admin/workflow/nodes/{nodeID} requests.
// Transitions referencing the node are removed with it.
func (wr *WorkflowRouter) HandleDeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := uuid.Parse(r.PathValue("nodeID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid nodeID: %v", err), http.StatusBadRequest)
		return
	}

	if err := wr.ns.DeleteNode(r.Context(), nodeID); err != nil {
		http.Error(w, fmt.Sprintf("failed to delete workflow node: %v", err), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGetTransitions handles GET /api/workflow/transitions requests
// Optional Query Params: includeInactive
func (wr *WorkflowRouter) HandleGetTransitions(w http.ResponseWriter, r *http.Request) {
	var (
		transitions []model.WorkflowTransition
		err         error
	)
	if r.URL.Query().Get("includeInactive") == "true" {
		transitions, err = wr.ts.ListTransitions(r.Context())
	} else {
		transitions, err = wr.ts.ListActiveTransitions(r.Context())
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get workflow transitions: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(transitions); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleCreateTransition handles POST /api/admin/workflow/transitions requests
func (wr *WorkflowRouter) HandleCreateTransition(w http.ResponseWriter, r *http.Request) {
	var createReq model.CreateWorkflowTransitionDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	transition, err := wr.ts.CreateTransition(r.Context(), &createReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to create workflow transition: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(transition); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleUpdateTransition handles PUT /api/admin/workflow/transitions/{transitionID} requests
func (wr *WorkflowRouter) HandleUpdateTransition(w http.ResponseWriter, r *http.Request) {
	transitionID, err := uuid.Parse(r.PathValue("transitionID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid transitionID: %v", err), http.StatusBadRequest)
		return
	}

	var updateReq model.UpdateWorkflowTransitionDTO
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	transition, err := wr.ts.UpdateTransition(r.Context(), transitionID, &updateReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to update workflow transition: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(transition); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleDeleteTransition handles DELETE /api/admin/workflow/transitions/{transitionID} requests
func (wr *WorkflowRouter) HandleDeleteTransition(w http.ResponseWriter, r *http.Request) {
	transitionID, err := uuid.Parse(r.PathValue("transitionID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid transitionID: %v", err), http.StatusBadRequest)
		return
	}

	if err := wr.ts.DeleteTransition(r.Context(), transitionID); err != nil {
		http.Error(w, fmt.Sprintf("failed to delete workflow transition: %v", err), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
