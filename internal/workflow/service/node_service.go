package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// NodeService manages the workflow node definitions configured by admins.
type NodeService struct {
	db *gorm.DB
}

func NewNodeService(db *gorm.DB) *NodeService {
	return &NodeService{db: db}
}

// ListActiveNodes returns active node definitions sorted by position.
func (s *NodeService) ListActiveNodes(ctx context.Context) ([]model.WorkflowNode, error) {
	var nodes []model.WorkflowNode
	err := s.db.WithContext(ctx).
		Where("status = ?", model.NodeStatusActive).
		Order("position ASC").
		Find(&nodes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve workflow nodes: %w", err)
	}
	return nodes, nil
}

// ListNodes returns all node definitions, including inactive ones, for admin views.
func (s *NodeService) ListNodes(ctx context.Context) ([]model.WorkflowNode, error) {
	var nodes []model.WorkflowNode
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve workflow nodes: %w", err)
	}
	return nodes, nil
}

// GetNodeByID retrieves a node definition by its ID.
func (s *NodeService) GetNodeByID(ctx context.Context, nodeID uuid.UUID) (*model.WorkflowNode, error) {
	if nodeID == uuid.Nil {
		return nil, fmt.Errorf("node ID cannot be nil")
	}

	var node model.WorkflowNode
	if err := s.db.WithContext(ctx).First(&node, "id = ?", nodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workflow node %s not found", nodeID)
		}
		return nil, fmt.Errorf("failed to retrieve workflow node: %w", err)
	}
	return &node, nil
}

// CreateNode creates a node definition from the admin payload.
func (s *NodeService) CreateNode(ctx context.Context, createReq *model.CreateWorkflowNodeDTO) (*model.WorkflowNode, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.Name == "" {
		return nil, fmt.Errorf("node name cannot be empty")
	}
	if err := validateNodeType(createReq.NodeType); err != nil {
		return nil, err
	}
	if err := validateAutoAdvanceCondition(createReq.AutoAdvanceCondition); err != nil {
		return nil, err
	}

	status := createReq.Status
	if status == "" {
		status = model.NodeStatusActive
	}

	node := &model.WorkflowNode{
		Name:                 createReq.Name,
		Description:          createReq.Description,
		Position:             createReq.Position,
		NodeType:             createReq.NodeType,
		Icon:                 createReq.Icon,
		Color:                createReq.Color,
		InputFields:          createReq.InputFields,
		TemplateIDs:          createReq.TemplateIDs,
		IsStartNode:          createReq.IsStartNode,
		IsEndNode:            createReq.IsEndNode,
		IsMainPath:           createReq.IsMainPath,
		AutoAdvanceCondition: createReq.AutoAdvanceCondition,
		Status:               status,
	}

	if err := s.db.WithContext(ctx).Create(node).Error; err != nil {
		return nil, fmt.Errorf("failed to create workflow node: %w", err)
	}
	return node, nil
}

// UpdateNode applies a partial update to a node definition.
func (s *NodeService) UpdateNode(ctx context.Context, nodeID uuid.UUID, updateReq *model.UpdateWorkflowNodeDTO) (*model.WorkflowNode, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	node, err := s.GetNodeByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	if updateReq.NodeType != nil {
		if err := validateNodeType(*updateReq.NodeType); err != nil {
			return nil, err
		}
		node.NodeType = *updateReq.NodeType
	}
	if updateReq.AutoAdvanceCondition != nil {
		if err := validateAutoAdvanceCondition(*updateReq.AutoAdvanceCondition); err != nil {
			return nil, err
		}
		node.AutoAdvanceCondition = *updateReq.AutoAdvanceCondition
	}
	if updateReq.Name != nil {
		node.Name = *updateReq.Name
	}
	if updateReq.Description != nil {
		node.Description = *updateReq.Description
	}
	if updateReq.Position != nil {
		node.Position = *updateReq.Position
	}
	if updateReq.Icon != nil {
		node.Icon = *updateReq.Icon
	}
	if updateReq.Color != nil {
		node.Color = *updateReq.Color
	}
	if updateReq.InputFields != nil {
		node.InputFields = *updateReq.InputFields
	}
	if updateReq.TemplateIDs != nil {
		node.TemplateIDs = *updateReq.TemplateIDs
	}
	if updateReq.IsStartNode != nil {
		node.IsStartNode = *updateReq.IsStartNode
	}
	if updateReq.IsEndNode != nil {
		node.IsEndNode = *updateReq.IsEndNode
	}
	if updateReq.IsMainPath != nil {
		node.IsMainPath = *updateReq.IsMainPath
	}
	if updateReq.Status != nil {
		node.Status = *updateReq.Status
	}

	if err := s.db.WithContext(ctx).Save(node).Error; err != nil {
		return nil, fmt.Errorf("failed to update workflow node: %w", err)
	}
	return node, nil
}

// DeleteNode removes a node definition together with every transition that
// references it. The two deletes run inside one transaction so a node can
// never leave dangling transitions behind.
func (s *NodeService) DeleteNode(ctx context.Context, nodeID uuid.UUID) error {
	if nodeID == uuid.Nil {
		return fmt.Errorf("node ID cannot be nil")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("from_node_id = ? OR to_node_id = ?", nodeID, nodeID).
			Delete(&model.WorkflowTransition{}).Error; err != nil {
			return fmt.Errorf("failed to delete transitions for node %s: %w", nodeID, err)
		}

		result := tx.Delete(&model.WorkflowNode{}, "id = ?", nodeID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete workflow node %s: %w", nodeID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("workflow node %s not found", nodeID)
		}
		return nil
	})
}

func validateNodeType(nodeType model.NodeType) error {
	switch nodeType {
	case model.NodeTypeAction, model.NodeTypeDecision, model.NodeTypeEnd:
		return nil
	default:
		return fmt.Errorf("invalid node type %q", nodeType)
	}
}

// validateAutoAdvanceCondition compile-checks the condition string so a typo
// is caught at configuration time. The condition itself stays informational;
// resolution never evaluates it.
func validateAutoAdvanceCondition(condition string) error {
	if condition == "" {
		return nil
	}
	if _, err := expr.Compile(condition); err != nil {
		return fmt.Errorf("invalid auto advance condition: %w", err)
	}
	return nil
}
