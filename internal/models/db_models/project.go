package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ProjectStatus string

const (
	ProjectDraft          ProjectStatus = "draft"
	ProjectInProgress     ProjectStatus = "in_progress"
	ProjectReadyForExport ProjectStatus = "ready_for_export"
	ProjectArchived       ProjectStatus = "archived"
)

// Project is one procurement dossier.
type Project struct {
	BaseModel
	OwnerID       uuid.UUID `gorm:"type:uuid;index"`
	Title         string
	Description   string
	NeedType      string
	Urgency       string
	Status        ProjectStatus  `gorm:"default:draft"`
	Tags          pq.StringArray `gorm:"type:text[]"`
	ExportReadyAt *int64

	Answers      []WizardAnswer
	ModuleStates []ModuleState
	Sections     []Section
}
