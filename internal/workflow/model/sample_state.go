package model

import (
	"time"

	"github.com/google/uuid"
)

// StateStatus marks the lifecycle of a per-node progress record.
type StateStatus string

const (
	StateStatusActive    StateStatus = "active"
	StateStatusCompleted StateStatus = "completed"
	StateStatusSkipped   StateStatus = "skipped"
)

// SampleWorkflowState records that a sample has reached or completed a node.
// The (sample_id, current_node_id) pair is unique; progress at a node is
// overwritten, never duplicated.
type SampleWorkflowState struct {
	BaseModel
	SampleID      uuid.UUID   `gorm:"type:uuid;column:sample_id;not null;index;uniqueIndex:idx_sample_node" json:"sampleId"`
	CurrentNodeID uuid.UUID   `gorm:"type:uuid;column:current_node_id;not null;uniqueIndex:idx_sample_node" json:"currentNodeId"`
	NodeData      JSONMap     `gorm:"type:jsonb;column:node_data;serializer:json" json:"nodeData"`
	EnteredAt     time.Time   `gorm:"type:timestamptz;column:entered_at;not null" json:"enteredAt"`
	CompletedAt   *time.Time  `gorm:"type:timestamptz;column:completed_at" json:"completedAt,omitempty"`
	Status        StateStatus `gorm:"type:varchar(20);column:status;not null;default:'active'" json:"status"`
}

func (s *SampleWorkflowState) TableName() string {
	return "sample_workflow_states"
}

// RecordWorkflowStateDTO is the officer payload for recording progress at a node.
type RecordWorkflowStateDTO struct {
	NodeID   uuid.UUID `json:"nodeId"`
	NodeData JSONMap   `json:"nodeData"`
}

// UpdateWorkflowStateDTO updates an existing state record directly by its id.
type UpdateWorkflowStateDTO struct {
	NodeData JSONMap      `json:"nodeData,omitempty"`
	Status   *StateStatus `json:"status,omitempty"`
}

// SampleFieldSync carries the fields a decision node writes back onto the
// sample record.
type SampleFieldSync struct {
	LabResult     *string
	LabReportDate *time.Time
}

// Empty reports whether there is nothing to write back.
func (s SampleFieldSync) Empty() bool {
	return s.LabResult == nil && s.LabReportDate == nil
}

// SampleSnapshot is the read-only view of a sample's legacy workflow fields.
// The sample entity itself is owned by the sample registry; resolution only
// needs these four values.
type SampleSnapshot struct {
	SampleID      uuid.UUID
	LiftedDate    *time.Time
	DispatchDate  *time.Time
	LabReportDate *time.Time
	LabResult     string
}

// HasLabResult reports whether a definitive lab result has been recorded.
// "pending" is the registry default and counts as unset.
func (s SampleSnapshot) HasLabResult() bool {
	return s.LabResult != "" && s.LabResult != "pending"
}
