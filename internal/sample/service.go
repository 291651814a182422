package sample

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openfsis/fsis/internal/workflow/model"
	"github.com/openfsis/fsis/utils"
)

// Service manages the sample registry. It is the workflow engine's external
// collaborator for legacy-field reads and lab-result write-backs.
type Service struct {
	db    *gorm.DB
	local *LocalStore // optional offline mirror, may be nil
}

func NewService(db *gorm.DB, local *LocalStore) *Service {
	return &Service{db: db, local: local}
}

// CreateSample registers a lifted sample and assigns its sample code.
func (s *Service) CreateSample(ctx context.Context, createReq *CreateSampleDTO) (*Sample, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}

	smp := &Sample{
		SampleCode:   newSampleCode(),
		InspectionID: createReq.InspectionID,
		Description:  createReq.Description,
		LiftedDate:   createReq.LiftedDate,
		LabResult:    LabResultPending,
	}

	if err := s.db.WithContext(ctx).Create(smp).Error; err != nil {
		return nil, fmt.Errorf("failed to create sample: %w", err)
	}

	return smp, nil
}

// GetSampleByID retrieves a sample, falling back to the offline mirror when
// the primary registry has no record.
func (s *Service) GetSampleByID(ctx context.Context, sampleID uuid.UUID) (*Sample, error) {
	if sampleID == uuid.Nil {
		return nil, fmt.Errorf("sample ID cannot be nil")
	}

	var smp Sample
	err := s.db.WithContext(ctx).First(&smp, "id = ?", sampleID).Error
	if err == nil {
		return &smp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to retrieve sample: %w", err)
	}

	if s.local != nil {
		if localSmp, localErr := s.local.Get(ctx, sampleID); localErr == nil {
			return localSmp, nil
		}
	}
	return nil, fmt.Errorf("sample %s not found: %w", sampleID, err)
}

// GetSamples lists samples, optionally filtered by inspection, with pagination.
func (s *Service) GetSamples(ctx context.Context, filter SampleFilter) ([]Sample, error) {
	offset, limit := utils.GetPaginationParams(filter.Offset, filter.Limit)

	query := s.db.WithContext(ctx).Model(&Sample{})
	if filter.InspectionID != nil {
		query = query.Where("inspection_id = ?", *filter.InspectionID)
	}

	var samples []Sample
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&samples).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve samples: %w", err)
	}
	return samples, nil
}

// UpdateSample applies registry-owned field updates.
func (s *Service) UpdateSample(ctx context.Context, sampleID uuid.UUID, updateReq *UpdateSampleDTO) (*Sample, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	var smp Sample
	if err := s.db.WithContext(ctx).First(&smp, "id = ?", sampleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sample %s not found", sampleID)
		}
		return nil, fmt.Errorf("failed to retrieve sample: %w", err)
	}

	if updateReq.Description != nil {
		smp.Description = *updateReq.Description
	}
	if updateReq.LiftedDate != nil {
		smp.LiftedDate = updateReq.LiftedDate
	}
	if updateReq.DispatchDate != nil {
		smp.DispatchDate = updateReq.DispatchDate
	}
	if updateReq.LabReportDate != nil {
		smp.LabReportDate = updateReq.LabReportDate
	}
	if updateReq.LabResult != nil {
		smp.LabResult = *updateReq.LabResult
	}

	if err := s.db.WithContext(ctx).Save(&smp).Error; err != nil {
		return nil, fmt.Errorf("failed to update sample: %w", err)
	}
	return &smp, nil
}

// Snapshot returns the legacy workflow fields for resolution. A sample that
// exists nowhere yields an empty snapshot, not an error: a brand-new sample
// simply has no progress yet.
func (s *Service) Snapshot(ctx context.Context, sampleID uuid.UUID) (model.SampleSnapshot, error) {
	smp, err := s.GetSampleByID(ctx, sampleID)
	if err != nil {
		return model.SampleSnapshot{SampleID: sampleID}, nil
	}
	return smp.Snapshot(), nil
}

// SyncWorkflowFields writes a decision node's recognized fields back onto the
// sample record. The primary registry is tried first, then the offline
// mirror; an error here is the caller's cue to log and carry on, never to
// abort the workflow-state write.
func (s *Service) SyncWorkflowFields(ctx context.Context, sampleID uuid.UUID, fields model.SampleFieldSync) error {
	if fields.Empty() {
		return nil
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if fields.LabResult != nil {
		updates["lab_result"] = *fields.LabResult
	}
	if fields.LabReportDate != nil {
		updates["lab_report_date"] = *fields.LabReportDate
	}

	result := s.db.WithContext(ctx).Model(&Sample{}).Where("id = ?", sampleID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to sync sample fields: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Not in the primary registry; the sample may only exist in the offline
	// mirror recorded by the officer's device.
	if s.local != nil {
		if err := s.local.SyncWorkflowFields(ctx, sampleID, fields); err == nil {
			slog.InfoContext(ctx, "sample fields synced to offline mirror", "sample_id", sampleID)
			return nil
		}
	}
	return fmt.Errorf("sample %s not found in registry or offline mirror", sampleID)
}

// newSampleCode generates a registry code such as FS-2026-3fa2b1.
func newSampleCode() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// Timestamp fallback keeps codes unique enough for a retry loop on
		// the unique index.
		return fmt.Sprintf("FS-%d-%06d", time.Now().Year(), time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("FS-%d-%s", time.Now().Year(), hex.EncodeToString(buf))
}
