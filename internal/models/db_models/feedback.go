package db_models

import "github.com/google/uuid"

// Feedback is a buyer's rating of the text the assistant drafted for one module.
type Feedback struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	ModuleID  string    `gorm:"not null;index"`
	Comment   string    `gorm:"type:text"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
}
