package wizard_models

import "strings"

type ValueKind string

const (
	ValueText      ValueKind = "text"
	ValueSelection ValueKind = "selection"
	ValueNumber    ValueKind = "number"
	ValueBool      ValueKind = "bool"
)

// AnswerValue is a discriminated answer payload. Checkbox answers keep their
// free-form detail text apart from the selections.
type AnswerValue struct {
	Kind       ValueKind `json:"kind"`
	Text       string    `json:"text,omitempty"`
	Selections []string  `json:"selections,omitempty"`
	Detail     *string   `json:"detail,omitempty"`
	Number     *float64  `json:"number,omitempty"`
	Bool       *bool     `json:"bool,omitempty"`
}

func TextValue(text string) AnswerValue {
	return AnswerValue{Kind: ValueText, Text: text}
}

// SelectionValue de-duplicates selections while keeping the first occurrence order.
// An empty or blank detail is dropped.
func SelectionValue(selections []string, detail string) AnswerValue {
	seen := make(map[string]bool, len(selections))
	unique := make([]string, 0, len(selections))
	for _, s := range selections {
		if seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	v := AnswerValue{Kind: ValueSelection, Selections: unique}
	if strings.TrimSpace(detail) != "" {
		d := detail
		v.Detail = &d
	}
	return v
}

func NumberValue(n float64) AnswerValue {
	return AnswerValue{Kind: ValueNumber, Number: &n}
}

func BoolValue(b bool) AnswerValue {
	return AnswerValue{Kind: ValueBool, Bool: &b}
}

func (v AnswerValue) DetailText() string {
	if v.Detail == nil {
		return ""
	}
	return *v.Detail
}

func (v AnswerValue) IsZero() bool {
	return v.Kind == ""
}

// Answer is the single stored value for a (module, question) pair.
type Answer struct {
	ModuleID      string      `json:"module_id"`
	QuestionID    string      `json:"question_id"`
	QuestionLabel string      `json:"question_label"`
	Value         AnswerValue `json:"value"`
}
