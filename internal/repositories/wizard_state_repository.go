package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dossier/internal/infra"
	"dossier/internal/models/db_models"
	"dossier/internal/models/wizard_models"
)

// WizardStateRepository is the dossier store behind the wizard: answers,
// module acceptance and validated sections.
type WizardStateRepository interface {
	LoadState(ctx context.Context, projectID string) (*wizard_models.WizardState, error)
	SaveAnswer(ctx context.Context, projectID string, answer wizard_models.Answer) error
	PersistSection(ctx context.Context, projectID string, section wizard_models.Section) error
	ListSections(ctx context.Context, projectID string) ([]db_models.Section, error)
	FindSection(ctx context.Context, projectID, moduleID string) (*db_models.Section, error)
}

type wizardStateRepository struct {
	db *gorm.DB
}

func NewWizardStateRepository(db *gorm.DB) WizardStateRepository {
	return &wizardStateRepository{db: db}
}

func parseProjectID(projectID string) (uuid.UUID, error) {
	id, err := uuid.Parse(projectID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project id %q: %w", projectID, err)
	}
	return id, nil
}

func (r *wizardStateRepository) LoadState(ctx context.Context, projectID string) (*wizard_models.WizardState, error) {
	id, err := parseProjectID(projectID)
	if err != nil {
		return nil, err
	}

	var answers []db_models.WizardAnswer
	if err := r.db.WithContext(ctx).Where("project_id = ?", id).Find(&answers).Error; err != nil {
		return nil, err
	}
	var states []db_models.ModuleState
	if err := r.db.WithContext(ctx).Where("project_id = ? AND validated = ?", id, true).Find(&states).Error; err != nil {
		return nil, err
	}
	var sections []db_models.Section
	if err := r.db.WithContext(ctx).Where("project_id = ?", id).Order("position").Find(&sections).Error; err != nil {
		return nil, err
	}

	state := &wizard_models.WizardState{
		Answers:          make([]wizard_models.Answer, 0, len(answers)),
		ValidatedModules: make(map[string]bool, len(states)),
		Sections:         make([]wizard_models.Section, 0, len(sections)),
	}
	for _, a := range answers {
		state.Answers = append(state.Answers, wizard_models.Answer{
			ModuleID:      a.ModuleID,
			QuestionID:    a.QuestionID,
			QuestionLabel: a.QuestionLabel,
			Value:         a.Value,
		})
	}
	for _, s := range states {
		state.ValidatedModules[s.ModuleID] = true
	}
	for _, s := range sections {
		state.Sections = append(state.Sections, wizard_models.Section{
			ID:      s.ModuleID,
			Title:   s.Title,
			Content: s.Content,
			Order:   s.Position,
		})
	}
	return state, nil
}

func (r *wizardStateRepository) SaveAnswer(ctx context.Context, projectID string, answer wizard_models.Answer) error {
	id, err := parseProjectID(projectID)
	if err != nil {
		return err
	}
	row := db_models.WizardAnswer{
		ProjectID:     id,
		ModuleID:      answer.ModuleID,
		QuestionID:    answer.QuestionID,
		QuestionLabel: answer.QuestionLabel,
		Value:         answer.Value,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "module_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"question_label", "value", "updated_at", "deleted_at"}),
	}).Create(&row).Error
}

// PersistSection writes the section and marks the module validated in one transaction.
func (r *wizardStateRepository) PersistSection(ctx context.Context, projectID string, section wizard_models.Section) (err error) {
	id, err := parseProjectID(projectID)
	if err != nil {
		return err
	}

	tx := infra.StartTransaction(r.db.WithContext(ctx))
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		err = infra.ReleaseTransaction(tx, err)
	}()

	row := db_models.Section{
		ProjectID: id,
		ModuleID:  section.ID,
		Title:     section.Title,
		Content:   section.Content,
		Position:  section.Order,
	}
	if err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content", "position", "updated_at", "deleted_at"}),
	}).Create(&row).Error; err != nil {
		return err
	}

	now := time.Now().Unix()
	state := db_models.ModuleState{
		ProjectID:   id,
		ModuleID:    section.ID,
		Validated:   true,
		ValidatedAt: &now,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"validated", "validated_at", "updated_at"}),
	}).Create(&state).Error
	return err
}

func (r *wizardStateRepository) ListSections(ctx context.Context, projectID string) ([]db_models.Section, error) {
	id, err := parseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	var sections []db_models.Section
	err = r.db.WithContext(ctx).Where("project_id = ?", id).Order("position").Find(&sections).Error
	return sections, err
}

func (r *wizardStateRepository) FindSection(ctx context.Context, projectID, moduleID string) (*db_models.Section, error) {
	id, err := parseProjectID(projectID)
	if err != nil {
		return nil, err
	}
	var section db_models.Section
	err = r.db.WithContext(ctx).First(&section, "project_id = ? AND module_id = ?", id, moduleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &section, nil
}
