package wizard

import (
	"testing"

	"dossier/internal/models/wizard_models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAnswerValid(t *testing.T) {
	q := func(typ wizard_models.QuestionType) wizard_models.Question {
		return wizard_models.Question{ID: "q", Label: "Q", Type: typ, Required: true}
	}

	tests := []struct {
		name     string
		question wizard_models.Question
		value    wizard_models.AnswerValue
		present  bool
		want     bool
	}{
		{"text filled", q(wizard_models.QuestionText), wizard_models.TextValue("hello"), true, true},
		{"text blank", q(wizard_models.QuestionText), wizard_models.TextValue("   "), true, false},
		{"textarea missing", q(wizard_models.QuestionTextarea), wizard_models.AnswerValue{}, false, false},
		{"radio text", q(wizard_models.QuestionRadio), wizard_models.TextValue("Yes"), true, true},
		{"radio bool", q(wizard_models.QuestionRadio), wizard_models.BoolValue(false), true, true},
		{"radio empty", q(wizard_models.QuestionRadio), wizard_models.TextValue(""), true, false},
		{"select or text", q(wizard_models.QuestionSelectOrText), wizard_models.TextValue("Other budget"), true, true},
		{"number zero counts", q(wizard_models.QuestionNumber), wizard_models.NumberValue(0), true, true},
		{"number wrong kind", q(wizard_models.QuestionNumber), wizard_models.TextValue("12"), true, false},
		{"date", q(wizard_models.QuestionDate), wizard_models.TextValue("2026-01-01"), true, true},
		{"date not a calendar day", q(wizard_models.QuestionDate), wizard_models.TextValue("2026-02-30"), true, false},
		{"date free text", q(wizard_models.QuestionDate), wizard_models.TextValue("next spring"), true, false},
		{"checkbox one", q(wizard_models.QuestionCheckbox), wizard_models.SelectionValue([]string{"a"}, ""), true, true},
		{"checkbox none", q(wizard_models.QuestionCheckbox), wizard_models.SelectionValue(nil, ""), true, false},
		{"optional always valid", wizard_models.Question{ID: "o", Type: wizard_models.QuestionText}, wizard_models.AnswerValue{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAnswerValid(tt.question, tt.value, tt.present))
		})
	}
}

func TestCheckboxMinSelectIgnoresDetail(t *testing.T) {
	q := wizard_models.Question{ID: "kinds", Type: wizard_models.QuestionCheckbox, Required: true, MinSelect: 3}

	t.Run("detail does not count as a selection", func(t *testing.T) {
		v := wizard_models.SelectionValue([]string{"a", "b"}, "something else entirely")
		assert.False(t, IsAnswerValid(q, v, true))
	})

	t.Run("duplicates do not count twice", func(t *testing.T) {
		v := wizard_models.SelectionValue([]string{"a", "b", "b"}, "")
		assert.False(t, IsAnswerValid(q, v, true))
	})

	t.Run("enough selections with detail", func(t *testing.T) {
		v := wizard_models.SelectionValue([]string{"a", "b", "c"}, "note")
		assert.True(t, IsAnswerValid(q, v, true))
	})

	t.Run("selection that looks like a sentinel is a plain selection", func(t *testing.T) {
		v := wizard_models.SelectionValue([]string{"__detail__:x", "b", "c"}, "")
		assert.True(t, IsAnswerValid(q, v, true))
		assert.Nil(t, v.Detail)
	})
}

func TestCheckShape(t *testing.T) {
	checkbox := wizard_models.Question{ID: "kinds", Type: wizard_models.QuestionCheckbox}
	number := wizard_models.Question{ID: "amount", Type: wizard_models.QuestionNumber}

	err := CheckShape("constraints", checkbox, wizard_models.TextValue("Regulatory"))
	require.Error(t, err)
	assert.True(t, IsValidationRejected(err))

	var rejected *ValidationRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "constraints", rejected.ModuleID)
	assert.Equal(t, "kinds", rejected.QuestionID)

	assert.NoError(t, CheckShape("constraints", checkbox, wizard_models.SelectionValue([]string{"a"}, "")))
	assert.NoError(t, CheckShape("budget", number, wizard_models.NumberValue(12.5)))
	assert.Error(t, CheckShape("budget", number, wizard_models.AnswerValue{Kind: wizard_models.ValueNumber}))
}
