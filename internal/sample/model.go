package sample

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	wfmodel "github.com/openfsis/fsis/internal/workflow/model"
)

// LabResult enumerates the possible outcomes of a lab analysis.
type LabResult string

const (
	LabResultPending     LabResult = "pending"
	LabResultNotUnsafe   LabResult = "not_unsafe"
	LabResultSubstandard LabResult = "substandard"
	LabResultUnsafe      LabResult = "unsafe"
)

// Sample is a food sample lifted during an inspection. The workflow engine
// reads the legacy date/result fields for fallback inference and writes back
// lab_result and lab_report_date from decision-node submissions; everything
// else belongs to the registry.
type Sample struct {
	ID            uuid.UUID  `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	SampleCode    string     `gorm:"type:varchar(50);column:sample_code;not null;uniqueIndex" json:"sampleCode"`
	InspectionID  *uuid.UUID `gorm:"type:uuid;column:inspection_id;index" json:"inspectionId,omitempty"`
	Description   string     `gorm:"type:text;column:description" json:"description"`
	LiftedDate    *time.Time `gorm:"type:timestamptz;column:lifted_date" json:"liftedDate,omitempty"`
	DispatchDate  *time.Time `gorm:"type:timestamptz;column:dispatch_date" json:"dispatchDate,omitempty"`
	LabReportDate *time.Time `gorm:"type:timestamptz;column:lab_report_date" json:"labReportDate,omitempty"`
	LabResult     LabResult  `gorm:"type:varchar(20);column:lab_result;not null;default:'pending'" json:"labResult"`
	CreatedAt     time.Time  `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
}

func (s *Sample) TableName() string {
	return "samples"
}

// BeforeCreate assigns the id and timestamps.
func (s *Sample) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = time.Now().UTC()
	return
}

// BeforeUpdate refreshes the updated timestamp.
func (s *Sample) BeforeUpdate(tx *gorm.DB) (err error) {
	s.UpdatedAt = time.Now().UTC()
	return
}

// Snapshot extracts the legacy workflow fields the resolver consumes.
func (s *Sample) Snapshot() wfmodel.SampleSnapshot {
	return wfmodel.SampleSnapshot{
		SampleID:      s.ID,
		LiftedDate:    s.LiftedDate,
		DispatchDate:  s.DispatchDate,
		LabReportDate: s.LabReportDate,
		LabResult:     string(s.LabResult),
	}
}

// CreateSampleDTO is the payload for registering a lifted sample.
type CreateSampleDTO struct {
	InspectionID *uuid.UUID `json:"inspectionId,omitempty"`
	Description  string     `json:"description"`
	LiftedDate   *time.Time `json:"liftedDate,omitempty"`
}

// UpdateSampleDTO updates registry-owned fields of a sample.
type UpdateSampleDTO struct {
	Description   *string    `json:"description,omitempty"`
	LiftedDate    *time.Time `json:"liftedDate,omitempty"`
	DispatchDate  *time.Time `json:"dispatchDate,omitempty"`
	LabReportDate *time.Time `json:"labReportDate,omitempty"`
	LabResult     *LabResult `json:"labResult,omitempty"`
}

// SampleFilter narrows sample listings.
type SampleFilter struct {
	InspectionID *uuid.UUID
	Offset       *int
	Limit        *int
}
