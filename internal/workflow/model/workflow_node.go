package model

// NodeType classifies a workflow node.
type NodeType string

const (
	NodeTypeAction   NodeType = "action"   // Officer records data and moves on
	NodeTypeDecision NodeType = "decision" // Downstream path depends on the lab result
	NodeTypeEnd      NodeType = "end"      // Terminal node
)

// NodeStatus marks whether a node definition participates in resolution.
type NodeStatus string

const (
	NodeStatusActive   NodeStatus = "active"
	NodeStatusInactive NodeStatus = "inactive"
)

// InputFieldType enumerates the field types an admin can attach to a node.
type InputFieldType string

const (
	InputFieldTypeText     InputFieldType = "text"
	InputFieldTypeDate     InputFieldType = "date"
	InputFieldTypeSelect   InputFieldType = "select"
	InputFieldTypeTextarea InputFieldType = "textarea"
	InputFieldTypeNumber   InputFieldType = "number"
	InputFieldTypeImage    InputFieldType = "image"
)

// InputField describes one admin-defined data field captured at a node.
type InputField struct {
	Name     string         `json:"name"`
	Type     InputFieldType `json:"type"`
	Label    string         `json:"label"`
	Required bool           `json:"required,omitempty"`
	Options  []string       `json:"options,omitempty"`
}

// InputFieldList is an ordered list of field descriptors stored as jsonb.
type InputFieldList []InputField

// WorkflowNode represents a configurable step in a sample's lifecycle.
type WorkflowNode struct {
	BaseModel
	Name                 string         `gorm:"type:varchar(255);column:name;not null" json:"name"`                              // Human-readable name of the step
	Description          string         `gorm:"type:text;column:description" json:"description"`                                 // Optional description shown to officers
	Position             int            `gorm:"column:position;not null" json:"position"`                                        // Default ordering along the main path
	NodeType             NodeType       `gorm:"type:varchar(20);column:node_type;not null" json:"nodeType"`                      // action, decision or end
	Icon                 string         `gorm:"type:varchar(100);column:icon" json:"icon"`                                       // Presentation only
	Color                string         `gorm:"type:varchar(50);column:color" json:"color"`                                      // Presentation only
	InputFields          InputFieldList `gorm:"type:jsonb;column:input_fields;serializer:json" json:"inputFields"`               // Admin-defined data fields captured at this step
	TemplateIDs          UUIDArray      `gorm:"type:jsonb;column:template_ids;serializer:json" json:"templateIds"`               // Document templates associated with this step
	IsStartNode          bool           `gorm:"column:is_start_node;not null;default:false" json:"isStartNode"`
	IsEndNode            bool           `gorm:"column:is_end_node;not null;default:false" json:"isEndNode"`
	IsMainPath           bool           `gorm:"column:is_main_path;not null;default:false" json:"isMainPath"`                    // Always-rendered linear step; replaces the old position cutoff
	AutoAdvanceCondition string         `gorm:"type:text;column:auto_advance_condition" json:"autoAdvanceCondition,omitempty"`   // Informational; validated but never evaluated during resolution
	Status               NodeStatus     `gorm:"type:varchar(20);column:status;not null;default:'active'" json:"status"`
}

func (n *WorkflowNode) TableName() string {
	return "workflow_nodes"
}

// CreateWorkflowNodeDTO is the admin payload for creating a node.
type CreateWorkflowNodeDTO struct {
	Name                 string         `json:"name"`
	Description          string         `json:"description"`
	Position             int            `json:"position"`
	NodeType             NodeType       `json:"nodeType"`
	Icon                 string         `json:"icon"`
	Color                string         `json:"color"`
	InputFields          InputFieldList `json:"inputFields"`
	TemplateIDs          UUIDArray      `json:"templateIds"`
	IsStartNode          bool           `json:"isStartNode"`
	IsEndNode            bool           `json:"isEndNode"`
	IsMainPath           bool           `json:"isMainPath"`
	AutoAdvanceCondition string         `json:"autoAdvanceCondition"`
	Status               NodeStatus     `json:"status"`
}

// UpdateWorkflowNodeDTO is the admin payload for updating a node.
// Pointer fields are applied only when present.
type UpdateWorkflowNodeDTO struct {
	Name                 *string         `json:"name,omitempty"`
	Description          *string         `json:"description,omitempty"`
	Position             *int            `json:"position,omitempty"`
	NodeType             *NodeType       `json:"nodeType,omitempty"`
	Icon                 *string         `json:"icon,omitempty"`
	Color                *string         `json:"color,omitempty"`
	InputFields          *InputFieldList `json:"inputFields,omitempty"`
	TemplateIDs          *UUIDArray      `json:"templateIds,omitempty"`
	IsStartNode          *bool           `json:"isStartNode,omitempty"`
	IsEndNode            *bool           `json:"isEndNode,omitempty"`
	IsMainPath           *bool           `json:"isMainPath,omitempty"`
	AutoAdvanceCondition *string         `json:"autoAdvanceCondition,omitempty"`
	Status               *NodeStatus     `json:"status,omitempty"`
}
