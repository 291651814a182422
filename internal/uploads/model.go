package uploads

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvidenceFile is the metadata row for an uploaded evidence binary,
// referenced from image-type workflow node fields.
type EvidenceFile struct {
	ID        uuid.UUID  `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	SampleID  *uuid.UUID `gorm:"type:uuid;column:sample_id;index" json:"sampleId,omitempty"`
	NodeID    *uuid.UUID `gorm:"type:uuid;column:node_id" json:"nodeId,omitempty"`
	FieldName string     `gorm:"type:varchar(100);column:field_name" json:"fieldName,omitempty"`
	Name      string     `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Key       string     `gorm:"type:varchar(255);column:key;not null;uniqueIndex" json:"key"`
	URL       string     `gorm:"type:text;column:url" json:"url"`
	Size      int64      `gorm:"column:size;not null" json:"size"`
	MimeType  string     `gorm:"type:varchar(100);column:mime_type;not null" json:"mimeType"`
	CreatedAt time.Time  `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
}

func (e *EvidenceFile) TableName() string {
	return "evidence_files"
}

// BeforeCreate assigns the id and timestamp.
func (e *EvidenceFile) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewRandom()
		if err != nil {
			return
		}
	}
	e.CreatedAt = time.Now().UTC()
	return
}
