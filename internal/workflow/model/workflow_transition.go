package model

import "github.com/google/uuid"

// ConditionType classifies how a transition's condition is evaluated.
type ConditionType string

const (
	ConditionTypeAlways     ConditionType = "always"
	ConditionTypeLabResult  ConditionType = "lab_result"  // Matched case-insensitively against the sample's lab result
	ConditionTypeFieldValue ConditionType = "field_value" // Matched against recorded node data of the from-node
)

// ConditionOperator enumerates the supported comparison operators.
type ConditionOperator string

const (
	OperatorEquals    ConditionOperator = "equals"
	OperatorNotEquals ConditionOperator = "not_equals"
	OperatorContains  ConditionOperator = "contains"
)

// WorkflowTransition is a directed edge between two nodes, taken conditionally
// after a decision node resolves.
type WorkflowTransition struct {
	BaseModel
	FromNodeID        uuid.UUID         `gorm:"type:uuid;column:from_node_id;not null;index" json:"fromNodeId"`
	ToNodeID          uuid.UUID         `gorm:"type:uuid;column:to_node_id;not null;index" json:"toNodeId"`
	ConditionType     ConditionType     `gorm:"type:varchar(20);column:condition_type;not null;default:'always'" json:"conditionType"`
	ConditionField    string            `gorm:"type:varchar(100);column:condition_field" json:"conditionField,omitempty"`
	ConditionOperator ConditionOperator `gorm:"type:varchar(20);column:condition_operator" json:"conditionOperator,omitempty"`
	ConditionValue    string            `gorm:"type:varchar(255);column:condition_value" json:"conditionValue,omitempty"`
	Label             string            `gorm:"type:varchar(255);column:label" json:"label"` // Shown to the officer on the branch
	DisplayOrder      int               `gorm:"column:display_order;not null;default:0" json:"displayOrder"`
	Status            NodeStatus        `gorm:"type:varchar(20);column:status;not null;default:'active'" json:"status"`
}

func (t *WorkflowTransition) TableName() string {
	return "workflow_transitions"
}

// CreateWorkflowTransitionDTO is the admin payload for creating a transition.
type CreateWorkflowTransitionDTO struct {
	FromNodeID        uuid.UUID         `json:"fromNodeId"`
	ToNodeID          uuid.UUID         `json:"toNodeId"`
	ConditionType     ConditionType     `json:"conditionType"`
	ConditionField    string            `json:"conditionField"`
	ConditionOperator ConditionOperator `json:"conditionOperator"`
	ConditionValue    string            `json:"conditionValue"`
	Label             string            `json:"label"`
	DisplayOrder      int               `json:"displayOrder"`
	Status            NodeStatus        `json:"status"`
}

// UpdateWorkflowTransitionDTO is the admin payload for updating a transition.
type UpdateWorkflowTransitionDTO struct {
	FromNodeID        *uuid.UUID         `json:"fromNodeId,omitempty"`
	ToNodeID          *uuid.UUID         `json:"toNodeId,omitempty"`
	ConditionType     *ConditionType     `json:"conditionType,omitempty"`
	ConditionField    *string            `json:"conditionField,omitempty"`
	ConditionOperator *ConditionOperator `json:"conditionOperator,omitempty"`
	ConditionValue    *string            `json:"conditionValue,omitempty"`
	Label             *string            `json:"label,omitempty"`
	DisplayOrder      *int               `json:"displayOrder,omitempty"`
	Status            *NodeStatus        `json:"status,omitempty"`
}
