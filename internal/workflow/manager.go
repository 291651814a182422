package workflow

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/openfsis/fsis/internal/workflow/router"
	"github.com/openfsis/fsis/internal/workflow/service"
)

// Manager wires the workflow services and routers together and exposes
// their HTTP surface to the server mux.
type Manager struct {
	nodeService       *service.NodeService
	transitionService *service.TransitionService
	stateService      *service.StateService
	resolveService    *service.ResolveService
	workflowRouter    *router.WorkflowRouter
	sampleStateRouter *router.SampleStateRouter
}

// NewManager creates the workflow manager. The syncer writes lab fields
// back to the sample registry; snapshots and templates feed the resolver.
func NewManager(
	db *gorm.DB,
	mainPathMaxPosition int,
	syncer service.SampleFieldSyncer,
	snapshots service.SnapshotProvider,
	templates service.TemplateProvider,
) *Manager {
	nodeService := service.NewNodeService(db)
	transitionService := service.NewTransitionService(db)
	stateService := service.NewStateService(db, nodeService, syncer)
	resolveService := service.NewResolveService(
		service.NewResolver(mainPathMaxPosition),
		nodeService,
		transitionService,
		stateService,
		snapshots,
		templates,
	)

	return &Manager{
		nodeService:       nodeService,
		transitionService: transitionService,
		stateService:      stateService,
		resolveService:    resolveService,
		workflowRouter:    router.NewWorkflowRouter(nodeService, transitionService),
		sampleStateRouter: router.NewSampleStateRouter(stateService, resolveService),
	}
}

// RegisterRoutes attaches the workflow endpoints to the mux.
func (m *Manager) RegisterRoutes(mux *http.ServeMux) {
	// Definition graph, read-only
	mux.HandleFunc("GET /api/workflow/nodes", m.workflowRouter.HandleGetNodes)
	mux.HandleFunc("GET /api/workflow/nodes/{nodeID}", m.workflowRouter.HandleGetNodeByID)
	mux.HandleFunc("GET /api/workflow/transitions", m.workflowRouter.HandleGetTransitions)

	// Admin CRUD
	mux.HandleFunc("POST /api/admin/workflow/nodes", m.workflowRouter.HandleCreateNode)
	mux.HandleFunc("PUT /api/admin/workflow/nodes/{nodeID}", m.workflowRouter.HandleUpdateNode)
	mux.HandleFunc("DELETE /api/admin/workflow/nodes/{nodeID}", m.workflowRouter.HandleDeleteNode)
	mux.HandleFunc("POST /api/admin/workflow/transitions", m.workflowRouter.HandleCreateTransition)
	mux.HandleFunc("PUT /api/admin/workflow/transitions/{transitionID}", m.workflowRouter.HandleUpdateTransition)
	mux.HandleFunc("DELETE /api/admin/workflow/transitions/{transitionID}", m.workflowRouter.HandleDeleteTransition)

	// Per-sample workflow state
	mux.HandleFunc("GET /api/samples/{sampleID}/workflow", m.sampleStateRouter.HandleGetSampleStates)
	mux.HandleFunc("POST /api/samples/{sampleID}/workflow", m.sampleStateRouter.HandleRecordNodeCompletion)
	mux.HandleFunc("GET /api/samples/{sampleID}/workflow/resolved", m.sampleStateRouter.HandleResolveWorkflow)
	mux.HandleFunc("PUT /api/workflow/states/{stateID}", m.sampleStateRouter.HandleUpdateState)
}

// StateService exposes the state service for other packages that record
// node completions outside the HTTP surface.
func (m *Manager) StateService() *service.StateService {
	return m.stateService
}
