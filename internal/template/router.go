package template

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Router serves the document template endpoints.
type Router struct {
	svc *Service
}

func NewRouter(svc *Service) *Router {
	return &Router{svc: svc}
}

// RegisterRoutes attaches the template endpoints to the mux.
func (tr *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/templates", tr.HandleGetTemplates)
	mux.HandleFunc("GET /api/templates/{templateID}", tr.HandleGetTemplateByID)
	mux.HandleFunc("POST /api/admin/templates", tr.HandleCreateTemplate)
	mux.HandleFunc("PUT /api/admin/templates/{templateID}", tr.HandleUpdateTemplate)
	mux.HandleFunc("DELETE /api/admin/templates/{templateID}", tr.HandleDeleteTemplate)
}

// HandleGetTemplates handles GET /api/templates requests
func (tr *Router) HandleGetTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := tr.svc.ListActiveTemplates(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get templates: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(templates); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleGetTemplateByID handles GET /api/templates/{templateID} requests
func (tr *Router) HandleGetTemplateByID(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(r.PathValue("templateID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid templateID: %v", err), http.StatusBadRequest)
		return
	}

	tpl, err := tr.svc.GetTemplateByID(r.Context(), templateID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get template: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(tpl); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleCreateTemplate handles POST /api/admin/templates requests
func (tr *Router) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var createReq CreateTemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	tpl, err := tr.svc.CreateTemplate(r.Context(), &createReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to create template: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(tpl); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleUpdateTemplate handles PUT /api/admin/templates/{templateID} requests
func (tr *Router) HandleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(r.PathValue("templateID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid templateID: %v", err), http.StatusBadRequest)
		return
	}

	var updateReq UpdateTemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	tpl, err := tr.svc.UpdateTemplate(r.Context(), templateID, &updateReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to update template: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(tpl); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleDeleteTemplate handles DELETE /api/admin/templates/{templateID} requests
func (tr *Router) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(r.PathValue("templateID"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid templateID: %v", err), http.StatusBadRequest)
		return
	}

	if err := tr.svc.DeleteTemplate(r.Context(), templateID); err != nil {
		http.Error(w, fmt.Sprintf("failed to delete template: %v", err), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
