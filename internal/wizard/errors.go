package wizard

import (
	"errors"
	"fmt"

	"dossier/internal/models/wizard_models"
)

var (
	ErrUnknownModule          = errors.New("unknown module")
	ErrUnknownQuestion        = errors.New("unknown question")
	ErrChoiceGenerationFailed = errors.New("choice generation failed")
	ErrRequestInFlight        = errors.New("a request is already in flight")
	ErrGenerationInProgress   = errors.New("generation already in progress")
	ErrStaleGeneration        = errors.New("generation result discarded: module no longer active")
	ErrNoDraft                = errors.New("no draft to act on")
	ErrNotEditing             = errors.New("draft is not being edited")
	ErrEmptyContent           = errors.New("content is empty")
	ErrNothingSelected        = errors.New("no choice selected and no free text")
	ErrNoGenerationStep       = errors.New("module has no generation step")
	ErrWizardComplete         = errors.New("wizard is complete")
	ErrNoActiveChat           = errors.New("no active conversation")
	ErrNoGeneratedText        = errors.New("no assembled text to apply")
	ErrAssistUnsupported      = errors.New("assistance only writes free-text answers")
)

// ValidationRejectedError reports an answer that does not fit its question.
// It is surfaced inline and never aborts navigation.
type ValidationRejectedError struct {
	ModuleID   string
	QuestionID string
	Type       wizard_models.QuestionType
	Reason     string
}

func (e *ValidationRejectedError) Error() string {
	return fmt.Sprintf("answer rejected for %s/%s (%s): %s", e.ModuleID, e.QuestionID, e.Type, e.Reason)
}

func IsValidationRejected(err error) bool {
	var target *ValidationRejectedError
	return errors.As(err, &target)
}
