package db_models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is embedded by every table: a uuid key, unix-second timestamps
// maintained by gorm, and soft deletes.
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CreatedAt int64          `gorm:"autoCreateTime"`
	UpdatedAt int64          `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate assigns an id when the caller left it empty.
func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
