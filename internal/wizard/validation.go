package wizard

import (
	"strings"
	"time"

	"dossier/internal/models/wizard_models"
)

// DateLayout is the calendar date format date answers are stored in.
const DateLayout = "2006-01-02"

// expectedKind maps a question type to the value kinds it accepts.
func expectedKind(t wizard_models.QuestionType) []wizard_models.ValueKind {
	switch t {
	case wizard_models.QuestionCheckbox:
		return []wizard_models.ValueKind{wizard_models.ValueSelection}
	case wizard_models.QuestionNumber:
		return []wizard_models.ValueKind{wizard_models.ValueNumber}
	case wizard_models.QuestionRadio:
		return []wizard_models.ValueKind{wizard_models.ValueText, wizard_models.ValueBool}
	default:
		return []wizard_models.ValueKind{wizard_models.ValueText}
	}
}

// CheckShape verifies that value has a kind the question type accepts.
func CheckShape(moduleID string, q wizard_models.Question, value wizard_models.AnswerValue) error {
	for _, k := range expectedKind(q.Type) {
		if value.Kind == k {
			if k == wizard_models.ValueNumber && value.Number == nil {
				break
			}
			if k == wizard_models.ValueBool && value.Bool == nil {
				break
			}
			return nil
		}
	}
	return &ValidationRejectedError{
		ModuleID:   moduleID,
		QuestionID: q.ID,
		Type:       q.Type,
		Reason:     "value of kind " + string(value.Kind) + " does not fit the question type",
	}
}

// IsAnswerValid reports whether value satisfies the question's required rule.
// Optional questions are always satisfied.
func IsAnswerValid(q wizard_models.Question, value wizard_models.AnswerValue, present bool) bool {
	if !q.Required {
		return true
	}
	return HasValue(q, value, present)
}

// HasValue reports whether value counts as an answer for q, regardless of Required.
func HasValue(q wizard_models.Question, value wizard_models.AnswerValue, present bool) bool {
	if !present || value.IsZero() {
		return false
	}
	switch q.Type {
	case wizard_models.QuestionText, wizard_models.QuestionTextarea:
		return value.Kind == wizard_models.ValueText && strings.TrimSpace(value.Text) != ""
	case wizard_models.QuestionRadio, wizard_models.QuestionSelectOrText:
		if value.Kind == wizard_models.ValueBool {
			return value.Bool != nil
		}
		return value.Kind == wizard_models.ValueText && value.Text != ""
	case wizard_models.QuestionCheckbox:
		return value.Kind == wizard_models.ValueSelection && len(value.Selections) >= q.EffectiveMinSelect()
	case wizard_models.QuestionNumber:
		return value.Kind == wizard_models.ValueNumber && value.Number != nil
	case wizard_models.QuestionDate:
		if value.Kind != wizard_models.ValueText {
			return false
		}
		_, err := time.Parse(DateLayout, strings.TrimSpace(value.Text))
		return err == nil
	}
	return false
}
