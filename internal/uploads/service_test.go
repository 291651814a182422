package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockDriver implements StorageDriver for testing
type MockDriver struct {
	SavedKey     string
	SavedBody    []byte
	URLErr       error
	DeleteCalled bool
	DeleteKey    string
}

func (m *MockDriver) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	m.SavedKey = key
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.SavedBody = content
	return nil
}

func (m *MockDriver) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.SavedBody)), nil
}

func (m *MockDriver) Delete(ctx context.Context, key string) error {
	m.DeleteCalled = true
	m.DeleteKey = key
	return nil
}

func (m *MockDriver) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if m.URLErr != nil {
		return "", m.URLErr
	}
	return "/api/uploads/" + key, nil
}

func setupUploadsDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&EvidenceFile{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestUploadService_Upload(t *testing.T) {
	db := setupUploadsDB(t)
	driver := &MockDriver{}
	service := NewUploadService(db, driver)
	ctx := context.Background()

	sampleID := uuid.New()
	nodeID := uuid.New()
	content := []byte("photo bytes")

	file, err := service.Upload(ctx, "sample.jpg", bytes.NewReader(content), int64(len(content)), "image/jpeg", UploadParams{
		SampleID:  &sampleID,
		NodeID:    &nodeID,
		FieldName: "evidencePhoto",
	})

	assert.NoError(t, err)
	assert.Equal(t, "sample.jpg", file.Name)
	assert.True(t, strings.HasSuffix(file.Key, ".jpg"))
	assert.Equal(t, driver.SavedKey, file.Key)
	assert.Equal(t, content, driver.SavedBody)
	assert.Equal(t, "image/jpeg", file.MimeType)
	assert.Equal(t, &sampleID, file.SampleID)

	// Metadata row persisted
	var stored EvidenceFile
	assert.NoError(t, db.First(&stored, "key = ?", file.Key).Error)
	assert.Equal(t, "evidencePhoto", stored.FieldName)
}

func TestUploadService_UploadDefaultsMimeType(t *testing.T) {
	db := setupUploadsDB(t)
	service := NewUploadService(db, &MockDriver{})

	file, err := service.Upload(context.Background(), "report.bin", bytes.NewReader([]byte("x")), 1, "", UploadParams{})

	assert.NoError(t, err)
	assert.Equal(t, "application/octet-stream", file.MimeType)
}

func TestUploadService_URLFailureCleansUpOrphan(t *testing.T) {
	db := setupUploadsDB(t)
	driver := &MockDriver{URLErr: errors.New("signing failed")}
	service := NewUploadService(db, driver)

	_, err := service.Upload(context.Background(), "sample.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg", UploadParams{})

	assert.Error(t, err)
	assert.True(t, driver.DeleteCalled)
	assert.Equal(t, driver.SavedKey, driver.DeleteKey)

	var count int64
	assert.NoError(t, db.Model(&EvidenceFile{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUploadService_Download(t *testing.T) {
	db := setupUploadsDB(t)
	driver := &MockDriver{}
	service := NewUploadService(db, driver)
	ctx := context.Background()

	content := []byte("pdf bytes")
	file, err := service.Upload(ctx, "report.pdf", bytes.NewReader(content), int64(len(content)), "application/pdf", UploadParams{})
	assert.NoError(t, err)

	reader, mime, err := service.Download(ctx, file.Key)
	assert.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "application/pdf", mime)
	read, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, content, read)
}

func TestUploadService_DownloadMissingKey(t *testing.T) {
	db := setupUploadsDB(t)
	service := NewUploadService(db, &MockDriver{})

	_, _, err := service.Download(context.Background(), "missing.jpg")

	assert.ErrorContains(t, err, "not found")
}

func TestUploadService_ListBySample(t *testing.T) {
	db := setupUploadsDB(t)
	service := NewUploadService(db, &MockDriver{})
	ctx := context.Background()

	sampleID := uuid.New()
	_, err := service.Upload(ctx, "a.jpg", bytes.NewReader([]byte("a")), 1, "image/jpeg", UploadParams{SampleID: &sampleID})
	assert.NoError(t, err)
	_, err = service.Upload(ctx, "b.jpg", bytes.NewReader([]byte("b")), 1, "image/jpeg", UploadParams{})
	assert.NoError(t, err)

	files, err := service.ListBySample(ctx, sampleID)

	assert.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "a.jpg", files[0].Name)
}
