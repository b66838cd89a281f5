package request_models

import "dossier/internal/models/wizard_models"

// AnswerRequest carries the typed value of the current question.
type AnswerRequest struct {
	Value wizard_models.AnswerValue `json:"value"`
}

type JumpRequest struct {
	ModuleIndex int `json:"module_index" binding:"min=0"`
}

type AIPanelRequest struct {
	Open *bool `json:"open" binding:"required"`
}

type ToggleChoiceRequest struct {
	Choice string `json:"choice" binding:"required"`
}

type AssembleChoicesRequest struct {
	FreeText string `json:"free_text" binding:"max=4000"`
}

type ChatReplyRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

type DraftContentRequest struct {
	Content string `json:"content" binding:"required"`
}
