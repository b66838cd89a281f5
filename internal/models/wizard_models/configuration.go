package wizard_models

import (
	"errors"
	"fmt"
)

type QuestionType string

const (
	QuestionText         QuestionType = "text"
	QuestionTextarea     QuestionType = "textarea"
	QuestionRadio        QuestionType = "radio"
	QuestionCheckbox     QuestionType = "checkbox"
	QuestionSelectOrText QuestionType = "select_or_text"
	QuestionNumber       QuestionType = "number"
	QuestionDate         QuestionType = "date"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionRadio, QuestionCheckbox,
		QuestionSelectOrText, QuestionNumber, QuestionDate:
		return true
	}
	return false
}

// Question is a single typed prompt inside a module.
type Question struct {
	ID              string       `json:"id" yaml:"id"`
	Label           string       `json:"label" yaml:"label"`
	Type            QuestionType `json:"type" yaml:"type"`
	Required        bool         `json:"required" yaml:"required"`
	MinSelect       int          `json:"min_select,omitempty" yaml:"min_select,omitempty"` // checkbox only, 0 means 1
	Options         []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Hint            string       `json:"hint,omitempty" yaml:"hint,omitempty"`
	ShowAIByDefault bool         `json:"show_ai_by_default,omitempty" yaml:"show_ai_by_default,omitempty"`
}

// EffectiveMinSelect returns the checkbox minimum, defaulting to 1.
func (q Question) EffectiveMinSelect() int {
	if q.MinSelect <= 0 {
		return 1
	}
	return q.MinSelect
}

// Module is an ordered group of questions that becomes one dossier section.
type Module struct {
	ID                  string     `json:"id" yaml:"id"`
	Title               string     `json:"title" yaml:"title"`
	Questions           []Question `json:"questions" yaml:"questions"`
	HasAssemblePrompt   bool       `json:"has_assemble_prompt" yaml:"has_assemble_prompt"`
	AssembleInstruction string     `json:"assemble_instruction,omitempty" yaml:"assemble_instruction,omitempty"`
	Rules               []string   `json:"rules,omitempty" yaml:"rules,omitempty"`
}

func (m Module) RequiredQuestions() []Question {
	var required []Question
	for _, q := range m.Questions {
		if q.Required {
			required = append(required, q)
		}
	}
	return required
}

func (m Module) QuestionIndex(questionID string) int {
	for i, q := range m.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

// WizardConfiguration is loaded once and never mutated afterwards.
type WizardConfiguration struct {
	Modules  []Module      `json:"modules" yaml:"modules"`
	Guidance GuidanceTable `json:"guidance" yaml:"guidance"`
}

func (c *WizardConfiguration) ModuleIndex(moduleID string) int {
	for i, m := range c.Modules {
		if m.ID == moduleID {
			return i
		}
	}
	return -1
}

func (c *WizardConfiguration) Module(moduleID string) (Module, bool) {
	idx := c.ModuleIndex(moduleID)
	if idx < 0 {
		return Module{}, false
	}
	return c.Modules[idx], true
}

func (c *WizardConfiguration) Question(moduleID, questionID string) (Question, bool) {
	m, ok := c.Module(moduleID)
	if !ok {
		return Question{}, false
	}
	idx := m.QuestionIndex(questionID)
	if idx < 0 {
		return Question{}, false
	}
	return m.Questions[idx], true
}

var ErrInvalidConfiguration = errors.New("invalid wizard configuration")

// Validate checks structural invariants of a freshly loaded configuration.
func (c *WizardConfiguration) Validate() error {
	if len(c.Modules) == 0 {
		return fmt.Errorf("%w: no modules", ErrInvalidConfiguration)
	}
	seenModules := make(map[string]bool)
	for _, m := range c.Modules {
		if m.ID == "" {
			return fmt.Errorf("%w: module without id", ErrInvalidConfiguration)
		}
		if seenModules[m.ID] {
			return fmt.Errorf("%w: duplicate module %q", ErrInvalidConfiguration, m.ID)
		}
		seenModules[m.ID] = true

		seenQuestions := make(map[string]bool)
		for _, q := range m.Questions {
			if q.ID == "" {
				return fmt.Errorf("%w: question without id in module %q", ErrInvalidConfiguration, m.ID)
			}
			if seenQuestions[q.ID] {
				return fmt.Errorf("%w: duplicate question %q in module %q", ErrInvalidConfiguration, q.ID, m.ID)
			}
			seenQuestions[q.ID] = true
			if !q.Type.Valid() {
				return fmt.Errorf("%w: question %s/%s has unknown type %q", ErrInvalidConfiguration, m.ID, q.ID, q.Type)
			}
			if q.MinSelect < 0 {
				return fmt.Errorf("%w: question %s/%s has negative min_select", ErrInvalidConfiguration, m.ID, q.ID)
			}
		}
	}
	return nil
}
