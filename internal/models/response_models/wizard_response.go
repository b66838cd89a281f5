package response_models

import (
	"dossier/internal/models/wizard_models"
	"dossier/internal/wizard"
)

// WizardView is everything a client needs to render the current screen.
type WizardView struct {
	ProjectID string                     `json:"project_id"`
	Screen    wizard.Screen              `json:"screen"`
	Module    ModuleView                 `json:"module"`
	Question  *wizard_models.Question    `json:"question,omitempty"`
	Answer    *wizard_models.AnswerValue `json:"answer,omitempty"`
	Guidance  wizard_models.Guidance     `json:"guidance"`
	Choices   *wizard.ChoicesSnapshot    `json:"choices,omitempty"`
	Chat      *wizard.ChatSnapshot       `json:"chat,omitempty"`
	Assembler *wizard.AssemblerSnapshot  `json:"assembler,omitempty"`
	Progress  wizard.ProgressReport      `json:"progress"`
	Error     string                     `json:"error,omitempty"`
}

type ModuleView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Index         int    `json:"index"`
	QuestionCount int    `json:"question_count"`
	Generated     bool   `json:"generated"`
}
