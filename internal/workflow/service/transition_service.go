package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// TransitionService manages the directed edges between workflow nodes.
type TransitionService struct {
	db *gorm.DB
}

func NewTransitionService(db *gorm.DB) *TransitionService {
	return &TransitionService{db: db}
}

// ListActiveTransitions returns active transitions sorted by display order.
func (s *TransitionService) ListActiveTransitions(ctx context.Context) ([]model.WorkflowTransition, error) {
	var transitions []model.WorkflowTransition
	err := s.db.WithContext(ctx).
		Where("status = ?", model.NodeStatusActive).
		Order("display_order ASC").
		Find(&transitions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve workflow transitions: %w", err)
	}
	return transitions, nil
}

// ListTransitions returns all transitions for admin views.
func (s *TransitionService) ListTransitions(ctx context.Context) ([]model.WorkflowTransition, error) {
	var transitions []model.WorkflowTransition
	if err := s.db.WithContext(ctx).Order("display_order ASC").Find(&transitions).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve workflow transitions: %w", err)
	}
	return transitions, nil
}

// GetTransitionByID retrieves a transition by its ID.
func (s *TransitionService) GetTransitionByID(ctx context.Context, transitionID uuid.UUID) (*model.WorkflowTransition, error) {
	if transitionID == uuid.Nil {
		return nil, fmt.Errorf("transition ID cannot be nil")
	}

	var transition model.WorkflowTransition
	if err := s.db.WithContext(ctx).First(&transition, "id = ?", transitionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workflow transition %s not found", transitionID)
		}
		return nil, fmt.Errorf("failed to retrieve workflow transition: %w", err)
	}
	return &transition, nil
}

// CreateTransition creates a transition from the admin payload.
func (s *TransitionService) CreateTransition(ctx context.Context, createReq *model.CreateWorkflowTransitionDTO) (*model.WorkflowTransition, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.FromNodeID == uuid.Nil || createReq.ToNodeID == uuid.Nil {
		return nil, fmt.Errorf("transition must reference both a from node and a to node")
	}
	if err := validateCondition(createReq.ConditionType, createReq.ConditionOperator); err != nil {
		return nil, err
	}

	status := createReq.Status
	if status == "" {
		status = model.NodeStatusActive
	}
	conditionType := createReq.ConditionType
	if conditionType == "" {
		conditionType = model.ConditionTypeAlways
	}

	transition := &model.WorkflowTransition{
		FromNodeID:        createReq.FromNodeID,
		ToNodeID:          createReq.ToNodeID,
		ConditionType:     conditionType,
		ConditionField:    createReq.ConditionField,
		ConditionOperator: createReq.ConditionOperator,
		ConditionValue:    createReq.ConditionValue,
		Label:             createReq.Label,
		DisplayOrder:      createReq.DisplayOrder,
		Status:            status,
	}

	if err := s.db.WithContext(ctx).Create(transition).Error; err != nil {
		return nil, fmt.Errorf("failed to create workflow transition: %w", err)
	}
	return transition, nil
}

// UpdateTransition applies a partial update to a transition.
func (s *TransitionService) UpdateTransition(ctx context.Context, transitionID uuid.UUID, updateReq *model.UpdateWorkflowTransitionDTO) (*model.WorkflowTransition, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	transition, err := s.GetTransitionByID(ctx, transitionID)
	if err != nil {
		return nil, err
	}

	if updateReq.FromNodeID != nil {
		transition.FromNodeID = *updateReq.FromNodeID
	}
	if updateReq.ToNodeID != nil {
		transition.ToNodeID = *updateReq.ToNodeID
	}
	if updateReq.ConditionType != nil {
		transition.ConditionType = *updateReq.ConditionType
	}
	if updateReq.ConditionField != nil {
		transition.ConditionField = *updateReq.ConditionField
	}
	if updateReq.ConditionOperator != nil {
		transition.ConditionOperator = *updateReq.ConditionOperator
	}
	if updateReq.ConditionValue != nil {
		transition.ConditionValue = *updateReq.ConditionValue
	}
	if updateReq.Label != nil {
		transition.Label = *updateReq.Label
	}
	if updateReq.DisplayOrder != nil {
		transition.DisplayOrder = *updateReq.DisplayOrder
	}
	if updateReq.Status != nil {
		transition.Status = *updateReq.Status
	}

	if err := validateCondition(transition.ConditionType, transition.ConditionOperator); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(transition).Error; err != nil {
		return nil, fmt.Errorf("failed to update workflow transition: %w", err)
	}
	return transition, nil
}

// DeleteTransition removes a transition.
func (s *TransitionService) DeleteTransition(ctx context.Context, transitionID uuid.UUID) error {
	if transitionID == uuid.Nil {
		return fmt.Errorf("transition ID cannot be nil")
	}

	result := s.db.WithContext(ctx).Delete(&model.WorkflowTransition{}, "id = ?", transitionID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete workflow transition: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("workflow transition %s not found", transitionID)
	}
	return nil
}

func validateCondition(conditionType model.ConditionType, operator model.ConditionOperator) error {
	switch conditionType {
	case "", model.ConditionTypeAlways, model.ConditionTypeLabResult:
	case model.ConditionTypeFieldValue:
		switch operator {
		case model.OperatorEquals, model.OperatorNotEquals, model.OperatorContains:
		default:
			return fmt.Errorf("invalid condition operator %q", operator)
		}
	default:
		return fmt.Errorf("invalid condition type %q", conditionType)
	}
	return nil
}
