package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	wfmodel "github.com/openfsis/fsis/internal/workflow/model"
)

// Service manages document template metadata.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListActiveTemplates returns active templates sorted by name.
func (s *Service) ListActiveTemplates(ctx context.Context) ([]DocumentTemplate, error) {
	var templates []DocumentTemplate
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve templates: %w", err)
	}
	return templates, nil
}

// GetTemplateByID retrieves a template by its ID.
func (s *Service) GetTemplateByID(ctx context.Context, templateID uuid.UUID) (*DocumentTemplate, error) {
	if templateID == uuid.Nil {
		return nil, fmt.Errorf("template ID cannot be nil")
	}

	var tmpl DocumentTemplate
	if err := s.db.WithContext(ctx).First(&tmpl, "id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template %s not found", templateID)
		}
		return nil, fmt.Errorf("failed to retrieve template: %w", err)
	}
	return &tmpl, nil
}

// CreateTemplate creates a template from the admin payload.
func (s *Service) CreateTemplate(ctx context.Context, createReq *CreateTemplateDTO) (*DocumentTemplate, error) {
	if createReq == nil {
		return nil, fmt.Errorf("create request cannot be nil")
	}
	if createReq.Name == "" {
		return nil, fmt.Errorf("template name cannot be empty")
	}

	version := createReq.Version
	if version == "" {
		version = "1.0"
	}

	tmpl := &DocumentTemplate{
		Name:        createReq.Name,
		Description: createReq.Description,
		Content:     createReq.Content,
		Version:     version,
		Active:      true,
	}
	if err := s.db.WithContext(ctx).Create(tmpl).Error; err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tmpl, nil
}

// UpdateTemplate applies a partial update to a template.
func (s *Service) UpdateTemplate(ctx context.Context, templateID uuid.UUID, updateReq *UpdateTemplateDTO) (*DocumentTemplate, error) {
	if updateReq == nil {
		return nil, fmt.Errorf("update request cannot be nil")
	}

	tmpl, err := s.GetTemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if updateReq.Name != nil {
		tmpl.Name = *updateReq.Name
	}
	if updateReq.Description != nil {
		tmpl.Description = *updateReq.Description
	}
	if updateReq.Content != nil {
		tmpl.Content = updateReq.Content
	}
	if updateReq.Version != nil {
		tmpl.Version = *updateReq.Version
	}
	if updateReq.Active != nil {
		tmpl.Active = *updateReq.Active
	}

	if err := s.db.WithContext(ctx).Save(tmpl).Error; err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return tmpl, nil
}

// DeleteTemplate removes a template. Workflow nodes referencing it simply
// stop resolving the reference; the id list on the node is pass-through data.
func (s *Service) DeleteTemplate(ctx context.Context, templateID uuid.UUID) error {
	if templateID == uuid.Nil {
		return fmt.Errorf("template ID cannot be nil")
	}

	result := s.db.WithContext(ctx).Delete(&DocumentTemplate{}, "id = ?", templateID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("template %s not found", templateID)
	}
	return nil
}

// TemplateRefs resolves template ids to pass-through references for the
// workflow resolver. Unknown ids are silently absent from the result.
func (s *Service) TemplateRefs(ctx context.Context, templateIDs []uuid.UUID) (map[uuid.UUID]wfmodel.TemplateRef, error) {
	refs := make(map[uuid.UUID]wfmodel.TemplateRef, len(templateIDs))
	if len(templateIDs) == 0 {
		return refs, nil
	}

	var templates []DocumentTemplate
	err := s.db.WithContext(ctx).
		Where("id IN ? AND active = ?", templateIDs, true).
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve templates: %w", err)
	}

	for _, tmpl := range templates {
		refs[tmpl.ID] = wfmodel.TemplateRef{ID: tmpl.ID, Name: tmpl.Name, Version: tmpl.Version}
	}
	return refs, nil
}
