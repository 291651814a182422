package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadService coordinates evidence uploads: the binary goes to the
// storage driver, the metadata row to the database.
type UploadService struct {
	db     *gorm.DB
	driver StorageDriver
}

func NewUploadService(db *gorm.DB, driver StorageDriver) *UploadService {
	return &UploadService{db: db, driver: driver}
}

// UploadParams carries the optional linkage of an evidence file to a
// sample workflow step.
type UploadParams struct {
	SampleID  *uuid.UUID
	NodeID    *uuid.UUID
	FieldName string
}

// Upload saves the content via the driver and records an EvidenceFile row.
func (s *UploadService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, mime string, params UploadParams) (*EvidenceFile, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	id := uuid.New()
	ext := filepath.Ext(filename)
	key := fmt.Sprintf("%s%s", id.String(), ext)

	if err := s.driver.Save(ctx, key, reader, mime); err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := s.driver.URL(ctx, key, 0)
	if err != nil {
		if delErr := s.driver.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to cleanup orphaned file", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	file := &EvidenceFile{
		ID:        id,
		SampleID:  params.SampleID,
		NodeID:    params.NodeID,
		FieldName: params.FieldName,
		Name:      filename,
		Key:       key,
		URL:       url,
		Size:      size,
		MimeType:  mime,
	}

	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		if delErr := s.driver.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to cleanup orphaned file", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to record evidence metadata: %w", err)
	}

	slog.InfoContext(ctx, "Evidence uploaded", "id", id, "key", key, "sampleId", params.SampleID)
	return file, nil
}

// Download retrieves the stored content and its MIME type by key.
func (s *UploadService) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	var file EvidenceFile
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("evidence file not found: %s", key)
		}
		return nil, "", err
	}

	reader, err := s.driver.Open(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return reader, file.MimeType, nil
}

// ListBySample returns the evidence files attached to a sample.
func (s *UploadService) ListBySample(ctx context.Context, sampleID uuid.UUID) ([]EvidenceFile, error) {
	var files []EvidenceFile
	err := s.db.WithContext(ctx).
		Where("sample_id = ?", sampleID).
		Order("created_at ASC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence files: %w", err)
	}
	return files, nil
}
