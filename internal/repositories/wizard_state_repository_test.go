package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dossier/internal/models/db_models"
	"dossier/internal/models/wizard_models"
)

func openStateTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "dossier.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&db_models.WizardAnswer{}, &db_models.ModuleState{}, &db_models.Section{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPersistSectionUpserts(t *testing.T) {
	ctx := context.Background()
	db := openStateTestDB(t)
	repo := NewWizardStateRepository(db)
	projectID := uuid.NewString()

	section := wizard_models.Section{ID: "description", Title: "Description of the need", Content: "First text", Order: 1}
	require.NoError(t, repo.PersistSection(ctx, projectID, section))
	section.Content = "Second text"
	require.NoError(t, repo.PersistSection(ctx, projectID, section))

	var sections int64
	require.NoError(t, db.Model(&db_models.Section{}).Count(&sections).Error)
	assert.Equal(t, int64(1), sections)
	var states int64
	require.NoError(t, db.Model(&db_models.ModuleState{}).Count(&states).Error)
	assert.Equal(t, int64(1), states)

	stored, err := repo.FindSection(ctx, projectID, "description")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Second text", stored.Content)

	state, err := repo.LoadState(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"description": true}, state.ValidatedModules)
	assert.Equal(t, []wizard_models.Section{section}, state.Sections)
}

func TestPersistSectionRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openStateTestDB(t)
	repo := NewWizardStateRepository(db)
	projectID := uuid.NewString()

	// the second write of the transaction fails
	require.NoError(t, db.Migrator().DropTable(&db_models.ModuleState{}))

	err := repo.PersistSection(ctx, projectID, wizard_models.Section{ID: "context", Title: "Context", Content: "Text"})
	require.Error(t, err)

	stored, err := repo.FindSection(ctx, projectID, "context")
	require.NoError(t, err)
	assert.Nil(t, stored, "the section write was rolled back")
}

func TestSaveAnswerUpserts(t *testing.T) {
	ctx := context.Background()
	db := openStateTestDB(t)
	repo := NewWizardStateRepository(db)
	projectID := uuid.NewString()

	answer := wizard_models.Answer{ModuleID: "context", QuestionID: "situation", QuestionLabel: "Current situation", Value: wizard_models.TextValue("by phone")}
	require.NoError(t, repo.SaveAnswer(ctx, projectID, answer))
	answer.Value = wizard_models.TextValue("online")
	require.NoError(t, repo.SaveAnswer(ctx, projectID, answer))
	require.NoError(t, repo.SaveAnswer(ctx, projectID, wizard_models.Answer{
		ModuleID:   "constraints",
		QuestionID: "kinds",
		Value:      wizard_models.SelectionValue([]string{"Security", "Technical"}, "badge readers"),
	}))

	state, err := repo.LoadState(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, state.Answers, 2)
	byQuestion := map[string]wizard_models.AnswerValue{}
	for _, a := range state.Answers {
		byQuestion[a.QuestionID] = a.Value
	}
	assert.Equal(t, "online", byQuestion["situation"].Text)
	assert.Equal(t, []string{"Security", "Technical"}, byQuestion["kinds"].Selections)
	assert.Empty(t, state.ValidatedModules)

	_, err = repo.LoadState(ctx, "not-a-uuid")
	assert.Error(t, err)
}
