package db_models

import (
	"github.com/google/uuid"

	"dossier/internal/models/wizard_models"
)

type WizardAnswer struct {
	BaseModel
	ProjectID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_answer_key"`
	ModuleID      string    `gorm:"uniqueIndex:idx_answer_key"`
	QuestionID    string    `gorm:"uniqueIndex:idx_answer_key"`
	QuestionLabel string
	Value         wizard_models.AnswerValue `gorm:"type:jsonb;serializer:json"`
}

// ModuleState records the acceptance of a generated module's draft.
type ModuleState struct {
	BaseModel
	ProjectID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_module_state_key"`
	ModuleID    string    `gorm:"uniqueIndex:idx_module_state_key"`
	Validated   bool
	ValidatedAt *int64
}
