package template

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentTemplate is an admin-configured document definition. Workflow
// nodes reference templates by id; this service only stores and serves the
// metadata, rendering happens elsewhere.
type DocumentTemplate struct {
	ID          uuid.UUID       `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Description string          `gorm:"type:text;column:description" json:"description,omitempty"`
	Content     json.RawMessage `gorm:"type:jsonb;column:content" json:"content,omitempty"`
	Version     string          `gorm:"type:varchar(50);column:version;not null;default:'1.0'" json:"version"`
	Active      bool            `gorm:"type:boolean;column:active;not null;default:true" json:"active"`
	CreatedAt   time.Time       `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
}

func (t *DocumentTemplate) TableName() string {
	return "document_templates"
}

// BeforeCreate assigns the id and timestamps.
func (t *DocumentTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = time.Now().UTC()
	return
}

// BeforeUpdate refreshes the updated timestamp.
func (t *DocumentTemplate) BeforeUpdate(tx *gorm.DB) (err error) {
	t.UpdatedAt = time.Now().UTC()
	return
}

// CreateTemplateDTO is the admin payload for creating a template.
type CreateTemplateDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Content     json.RawMessage `json:"content"`
	Version     string          `json:"version"`
}

// UpdateTemplateDTO is the admin payload for updating a template.
type UpdateTemplateDTO struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
	Version     *string         `json:"version,omitempty"`
	Active      *bool           `json:"active,omitempty"`
}
