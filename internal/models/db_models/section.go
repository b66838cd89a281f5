package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Section is the validated text of one module, as it appears in the dossier.
type Section struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_section_key"`
	ModuleID  string    `gorm:"uniqueIndex:idx_section_key"`
	Title     string
	Content   string `gorm:"type:text"`
	Position  int
}

// SectionEmbedding indexes validated sections for style references.
type SectionEmbedding struct {
	SectionID string `gorm:"primaryKey;column:section_id"`
	ProjectID string `gorm:"index"`
	ModuleID  string `gorm:"index"`
	NeedType  string
	Content   string
	Tags      pq.StringArray  `gorm:"type:text[]"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}
