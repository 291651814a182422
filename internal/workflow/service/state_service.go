package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// SampleFieldSyncer writes recognized decision-node fields back onto the
// sample record. Implemented by the sample registry.
type SampleFieldSyncer interface {
	SyncWorkflowFields(ctx context.Context, sampleID uuid.UUID, fields model.SampleFieldSync) error
}

// StateService persists per-sample workflow progress. Recording progress at a
// node is idempotent: one authoritative record per (sample, node), the latest
// submission winning.
type StateService struct {
	db     *gorm.DB
	nodes  *NodeService
	syncer SampleFieldSyncer
}

func NewStateService(db *gorm.DB, nodes *NodeService, syncer SampleFieldSyncer) *StateService {
	return &StateService{db: db, nodes: nodes, syncer: syncer}
}

// ListStatesBySample returns a sample's progress records sorted by entry time.
func (s *StateService) ListStatesBySample(ctx context.Context, sampleID uuid.UUID) ([]model.SampleWorkflowState, error) {
	if sampleID == uuid.Nil {
		return nil, fmt.Errorf("sample ID cannot be nil")
	}

	var states []model.SampleWorkflowState
	err := s.db.WithContext(ctx).
		Where("sample_id = ?", sampleID).
		Order("entered_at ASC").
		Find(&states).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve workflow states: %w", err)
	}
	return states, nil
}

// RecordNodeCompletion persists an officer's update at a node and propagates
// recognized fields back to the sample.
//
// The sample write-back is best effort: the sample may only exist on the
// officer's device, so a miss is logged and swallowed. The state upsert is
// the operation's contract; its failure is surfaced as a retryable error.
func (s *StateService) RecordNodeCompletion(ctx context.Context, sampleID uuid.UUID, req *model.RecordWorkflowStateDTO) (*model.SampleWorkflowState, error) {
	if sampleID == uuid.Nil {
		return nil, fmt.Errorf("sample ID cannot be nil")
	}
	if req == nil || req.NodeID == uuid.Nil {
		return nil, fmt.Errorf("node ID cannot be nil")
	}

	node, err := s.nodes.GetNodeByID(ctx, req.NodeID)
	if err != nil {
		return nil, err
	}
	if node.Status != model.NodeStatusActive {
		return nil, fmt.Errorf("workflow node %s is inactive", node.ID)
	}

	if err := validateNodeData(node, req.NodeData); err != nil {
		return nil, err
	}

	if node.NodeType == model.NodeTypeDecision {
		s.syncSampleFields(ctx, sampleID, req.NodeData)
	}

	now := time.Now().UTC()
	state := model.SampleWorkflowState{
		SampleID:      sampleID,
		CurrentNodeID: node.ID,
		NodeData:      req.NodeData,
		EnteredAt:     now,
		CompletedAt:   &now,
		Status:        model.StateStatusCompleted,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sample_id"}, {Name: "current_node_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"node_data", "completed_at", "status", "updated_at",
		}),
	}).Create(&state).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record workflow state: %w", err)
	}

	// On conflict the existing row keeps its identity; re-read so the caller
	// always sees the persisted record.
	var persisted model.SampleWorkflowState
	err = s.db.WithContext(ctx).
		First(&persisted, "sample_id = ? AND current_node_id = ?", sampleID, node.ID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read back workflow state: %w", err)
	}
	return &persisted, nil
}

// UpdateStateByID applies node data and status directly to an existing record.
func (s *StateService) UpdateStateByID(ctx context.Context, stateID uuid.UUID, updateReq *model.UpdateWorkflowStateDTO) (*model.SampleWorkflowState, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	var state model.SampleWorkflowState
	if err := s.db.WithContext(ctx).First(&state, "id = ?", stateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workflow state %s not found", stateID)
		}
		return nil, fmt.Errorf("failed to retrieve workflow state: %w", err)
	}

	if updateReq.NodeData != nil {
		state.NodeData = updateReq.NodeData
	}
	if updateReq.Status != nil {
		state.Status = *updateReq.Status
		if *updateReq.Status == model.StateStatusCompleted && state.CompletedAt == nil {
			now := time.Now().UTC()
			state.CompletedAt = &now
		}
	}

	if err := s.db.WithContext(ctx).Save(&state).Error; err != nil {
		return nil, fmt.Errorf("failed to update workflow state: %w", err)
	}
	return &state, nil
}

// syncSampleFields stages labResult and labReportDate from a decision node's
// data and writes them to the sample. Failures never abort the caller.
func (s *StateService) syncSampleFields(ctx context.Context, sampleID uuid.UUID, nodeData model.JSONMap) {
	var fields model.SampleFieldSync

	if raw, ok := nodeData["labResult"]; ok {
		if value := fmt.Sprint(raw); value != "" {
			fields.LabResult = &value
		}
	}
	if raw, ok := nodeData["labReportDate"]; ok {
		if value, isString := raw.(string); isString && value != "" {
			date, err := parseLabReportDate(value)
			if err != nil {
				slog.WarnContext(ctx, "skipping malformed lab report date",
					"sample_id", sampleID, "value", value, "error", err)
			} else {
				fields.LabReportDate = &date
			}
		}
	}

	if fields.Empty() || s.syncer == nil {
		return
	}

	if err := s.syncer.SyncWorkflowFields(ctx, sampleID, fields); err != nil {
		slog.WarnContext(ctx, "sample field sync failed, workflow state will still be recorded",
			"sample_id", sampleID, "error", err)
	}
}

// validateNodeData checks required declared fields. A node with no declared
// fields accepts free-text notes (or nothing at all).
func validateNodeData(node *model.WorkflowNode, nodeData model.JSONMap) error {
	if len(node.InputFields) == 0 {
		return nil
	}
	for _, field := range node.InputFields {
		if !field.Required {
			continue
		}
		raw, ok := nodeData[field.Name]
		if !ok || fmt.Sprint(raw) == "" {
			return fmt.Errorf("required field %q is missing", field.Name)
		}
	}
	return nil
}

// parseLabReportDate parses the officer-entered DD-MM-YYYY format.
func parseLabReportDate(value string) (time.Time, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("expected DD-MM-YYYY, got %q", value)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %q", value)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in %q", value)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q", value)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components; reject anything that moved.
	if date.Day() != day || int(date.Month()) != month || date.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return date, nil
}
