package sample

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openfsis/fsis/internal/workflow/model"
)

// LocalStore is a sqlite-backed mirror of samples recorded offline by field
// officers. It exists so a decision-node write-back has somewhere to land
// when the primary registry has never seen the sample.
type LocalStore struct {
	db *gorm.DB
}

// OpenLocalStore opens (or creates) the sqlite mirror at the given path.
func OpenLocalStore(path string) (*LocalStore, error) {
	if path == "" {
		path = "samples_local.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local sample store: %w", err)
	}

	if err := db.AutoMigrate(&Sample{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local sample store: %w", err)
	}

	return &LocalStore{db: db}, nil
}

// Get retrieves a mirrored sample by id.
func (ls *LocalStore) Get(ctx context.Context, sampleID uuid.UUID) (*Sample, error) {
	var smp Sample
	if err := ls.db.WithContext(ctx).First(&smp, "id = ?", sampleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sample %s not in local store", sampleID)
		}
		return nil, fmt.Errorf("failed to read local sample store: %w", err)
	}
	return &smp, nil
}

// Put inserts or replaces a mirrored sample.
func (ls *LocalStore) Put(ctx context.Context, smp *Sample) error {
	if smp == nil {
		return fmt.Errorf("sample cannot be nil")
	}
	if err := ls.db.WithContext(ctx).Save(smp).Error; err != nil {
		return fmt.Errorf("failed to write local sample store: %w", err)
	}
	return nil
}

// SyncWorkflowFields applies a decision node's write-back to a mirrored sample.
func (ls *LocalStore) SyncWorkflowFields(ctx context.Context, sampleID uuid.UUID, fields model.SampleFieldSync) error {
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

	result := ls.db.WithContext(ctx).Model(&Sample{}).Where("id = ?", sampleID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to sync local sample fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("sample %s not in local store", sampleID)
	}
	return nil
}

// Close closes the underlying sqlite handle.
func (ls *LocalStore) Close() error {
	sqlDB, err := ls.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}
