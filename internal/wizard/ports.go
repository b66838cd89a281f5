package wizard

import (
	"context"

	"dossier/internal/models/wizard_models"
)

// AnswerSaver receives debounced answer writes.
type AnswerSaver interface {
	SaveAnswer(ctx context.Context, projectID string, answer wizard_models.Answer) error
}

// StateStore is the dossier store the wizard reads from and writes into.
type StateStore interface {
	AnswerSaver
	LoadState(ctx context.Context, projectID string) (*wizard_models.WizardState, error)
	PersistSection(ctx context.Context, projectID string, section wizard_models.Section) error
}

// ReferenceProvider returns validated section texts similar to the given text.
type ReferenceProvider interface {
	SimilarSections(ctx context.Context, projectID, moduleID, text string) ([]string, error)
}

// ShellEvents are the only signals emitted toward the surrounding application.
type ShellEvents interface {
	OnExportEnabled(projectID string)
	OnSwitchToDashboard(projectID string)
}

type noopEvents struct{}

func (noopEvents) OnExportEnabled(string)     {}
func (noopEvents) OnSwitchToDashboard(string) {}
