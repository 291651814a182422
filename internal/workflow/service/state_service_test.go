package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// MockSampleFieldSyncer
type MockSampleFieldSyncer struct {
	mock.Mock
}

func (m *MockSampleFieldSyncer) SyncWorkflowFields(ctx context.Context, sampleID uuid.UUID, fields model.SampleFieldSync) error {
	args := m.Called(ctx, sampleID, fields)
	return args.Error(0)
}

func createTestNode(t *testing.T, db *gorm.DB, name string, nodeType model.NodeType) *model.WorkflowNode {
	t.Helper()
	node := &model.WorkflowNode{
		Name:     name,
		NodeType: nodeType,
		Status:   model.NodeStatusActive,
	}
	assert.NoError(t, db.Create(node).Error)
	return node
}

func TestStateService_RecordNodeCompletion(t *testing.T) {
	db := setupWorkflowDB(t)
	service := NewStateService(db, NewNodeService(db), nil)
	ctx := context.Background()

	node := createTestNode(t, db, "Sample Lifted", model.NodeTypeAction)
	sampleID := uuid.New()

	state, err := service.RecordNodeCompletion(ctx, sampleID, &model.RecordWorkflowStateDTO{
		NodeID:   node.ID,
		NodeData: model.JSONMap{"notes": "sealed on site"},
	})

	assert.NoError(t, err)
	assert.Equal(t, sampleID, state.SampleID)
	assert.Equal(t, node.ID, state.CurrentNodeID)
	assert.Equal(t, model.StateStatusCompleted, state.Status)
	assert.NotNil(t, state.CompletedAt)
	assert.Equal(t, "sealed on site", state.NodeData["notes"])
}

func TestStateService_RecordNodeCompletionIsIdempotent(t *testing.T) {
	db := setupWorkflowDB(t)
	service := NewStateService(db, NewNodeService(db), nil)
	ctx := context.Background()

	node := createTestNode(t, db, "Sample Lifted", model.NodeTypeAction)
	sampleID := uuid.New()

	first, err := service.RecordNodeCompletion(ctx, sampleID, &model.RecordWorkflowStateDTO{
		NodeID:   node.ID,
		NodeData: model.JSONMap{"notes": "first submission"},
	})
	assert.NoError(t, err)

	second, err := service.RecordNodeCompletion(ctx, sampleID, &model.RecordWorkflowStateDTO{
		NodeID:   node.ID,
		NodeData: model.JSONMap{"notes": "corrected submission"},
	})
	assert.NoError(t, err)

	// Same row updated, never a duplicate.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "corrected submission", second.NodeData["notes"])

	var count int64
	assert.NoError(t, db.Model(&model.SampleWorkflowState{}).
		Where("sample_id = ? AND current_node_id = ?", sampleID, node.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStateService_RecordNodeCompletionRejectsInactiveNode(t *testing.T) {
	db := setupWorkflowDB(t)
	service := NewStateService(db, NewNodeService(db), nil)
	ctx := context.Background()

	node := createTestNode(t, db, "Sample Lifted", model.NodeTypeAction)
	assert.NoError(t, db.Model(node).Update("status", model.NodeStatusInactive).Error)

	_, err := service.RecordNodeCompletion(ctx, uuid.New(), &model.RecordWorkflowStateDTO{
		NodeID: node.ID,
	})

	assert.ErrorContains(t, err, "inactive")
}

func TestStateService_RecordNodeCompletionRejectsMissingRequiredField(t *testing.T) {
	db := setupWorkflowDB(t)
	service := NewStateService(db, NewNodeService(db), nil)
	ctx := context.Background()

	node := &model.WorkflowNode{
		Name:     "Dispatched to Lab",
		NodeType: model.NodeTypeAction,
		Status:   model.NodeStatusActive,
		InputFields: model.InputFieldList{
			{Name: "courier", Type: model.InputFieldTypeText, Label: "Courier", Required: true},
		},
	}
	assert.NoError(t, db.Create(node).Error)

	_, err := service.RecordNodeCompletion(ctx, uuid.New(), &model.RecordWorkflowStateDTO{
		NodeID:   node.ID,
		NodeData: model.JSONMap{"notes": "no courier recorded"},
	})

	assert.ErrorContains(t, err, `required field "courier" is missing`)
}

func TestStateService_DecisionNodeSyncsSampleFields(t *testing.T) {
	db := setupWorkflowDB(t)
	syncer := new(MockSampleFieldSyncer)
	service := NewStateService(db, NewNodeService(db), syncer)
	ctx := context.Background()

	node := createTestNode(t, db, "Lab Result", model.NodeTypeDecision)
	sampleID := uuid.New()

	syncer.On("SyncWorkflowFields", mock.Anything, sampleID, mock.MatchedBy(func(fields model.SampleFieldSync) bool {
		if fields.LabResult == nil || *fields.LabResult != "unsafe" {
			return false
		}
		want := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		return fields.LabReportDate != nil && fields.LabReportDate.Equal(want)
	})).Return(nil)

	_, err := service.RecordNodeCompletion(ctx, sampleID, &model.RecordWorkflowStateDTO{
		NodeID: node.ID,
		NodeData: model.JSONMap{
			"labResult":     "unsafe",
			"labReportDate": "01-05-2026",
		},
	})

	assert.NoError(t, err)
	syncer.AssertExpectations(t)
}

func TestStateService_SyncFailureDoesNotAbortStateWrite(t *testing.T) {
	db := setupWorkflowDB(t)
	syncer := new(MockSampleFieldSyncer)
	service := NewStateService(db, NewNodeService(db), syncer)
	ctx := context.Background()

	node := createTestNode(t, db, "Lab Result", model.NodeTypeDecision)
	sampleID := uuid.New()

	syncer.On("SyncWorkflowFields", mock.Anything, sampleID, mock.Anything).
		Return(errors.New("registry unavailable"))

	state, err := service.RecordNodeCompletion(ctx, sampleID, &model.RecordWorkflowStateDTO{
		NodeID:   node.ID,
		NodeData: model.JSONMap{"labResult": "unsafe"},
	})

	assert.NoError(t, err)
	assert.Equal(t, model.StateStatusCompleted, state.Status)
	syncer.AssertExpectations(t)
}

func TestStateService_MalformedLabReportDateIsSkipped(t *testing.T) {
	db := setupWorkflowDB(t)
	syncer := new(MockSampleFieldSyncer)
	service := NewStateService(db, NewNodeService(db), syncer)
	ctx := context.Background()

	node := createTestNode(t, db, "Lab Result", model.NodeTypeDecision)
	sampleID := uuid.New()

	// labResult still syncs; the unparseable date is dropped.
	syncer.On("SyncWorkflowFields", mock.Anything, sampleID, mock.MatchedBy(func(fields model.SampleFieldSync) bool {
		return fields.LabResult != nil && fields.LabReportDate == nil
	})).Return(nil)

	_, err := service.RecordNodeCompletion(ctx, sampleID, &model.RecordWorkflowStateDTO{
		NodeID: node.ID,
		NodeData: model.JSONMap{
			"labResult":     "substandard",
			"labReportDate": "2026-05-01",
		},
	})

	assert.NoError(t, err)
	syncer.AssertExpectations(t)
}

func TestStateService_ListStatesBySampleOrdersByEntry(t *testing.T) {
	db := setupWorkflowDB(t)
	service := NewStateService(db, NewNodeService(db), nil)
	ctx := context.Background()

	sampleID := uuid.New()
	older := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	assert.NoError(t, db.Create(&model.SampleWorkflowState{
		SampleID:      sampleID,
		CurrentNodeID: uuid.New(),
		EnteredAt:     newer,
		Status:        model.StateStatusActive,
	}).Error)
	assert.NoError(t, db.Create(&model.SampleWorkflowState{
		SampleID:      sampleID,
		CurrentNodeID: uuid.New(),
		EnteredAt:     older,
		Status:        model.StateStatusCompleted,
	}).Error)

	states, err := service.ListStatesBySample(ctx, sampleID)

	assert.NoError(t, err)
	assert.Len(t, states, 2)
	assert.True(t, states[0].EnteredAt.Before(states[1].EnteredAt))
}

func TestStateService_UpdateStateByID(t *testing.T) {
	db := setupWorkflowDB(t)
	service := NewStateService(db, NewNodeService(db), nil)
	ctx := context.Background()

	state := &model.SampleWorkflowState{
		SampleID:      uuid.New(),
		CurrentNodeID: uuid.New(),
		EnteredAt:     time.Now().UTC(),
		Status:        model.StateStatusActive,
	}
	assert.NoError(t, db.Create(state).Error)

	completed := model.StateStatusCompleted
	updated, err := service.UpdateStateByID(ctx, state.ID, &model.UpdateWorkflowStateDTO{
		NodeData: model.JSONMap{"notes": "verified"},
		Status:   &completed,
	})

	assert.NoError(t, err)
	assert.Equal(t, model.StateStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	assert.Equal(t, "verified", updated.NodeData["notes"])
}

func TestParseLabReportDate(t *testing.T) {
	date, err := parseLabReportDate("09-12-2025")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC), date)

	for _, malformed := range []string{"2025-12-09", "31-02-2025", "09/12/2025", "9-13-2025", ""} {
		_, err := parseLabReportDate(malformed)
		assert.Error(t, err, malformed)
	}
}
