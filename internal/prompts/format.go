package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"dossier/internal/models/wizard_models"
)

// FormatAnswerValue renders a value as plain text for interpolation.
func FormatAnswerValue(v wizard_models.AnswerValue) string {
	switch v.Kind {
	case wizard_models.ValueText:
		return strings.TrimSpace(v.Text)
	case wizard_models.ValueSelection:
		out := strings.Join(v.Selections, ", ")
		if detail := strings.TrimSpace(v.DetailText()); detail != "" {
			if out == "" {
				return detail
			}
			out += " (detail: " + detail + ")"
		}
		return out
	case wizard_models.ValueNumber:
		if v.Number == nil {
			return ""
		}
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case wizard_models.ValueBool:
		if v.Bool == nil {
			return ""
		}
		if *v.Bool {
			return "yes"
		}
		return "no"
	}
	return ""
}

// FormatAnswers renders answers as "label: value" lines, skipping empty values.
func FormatAnswers(answers []wizard_models.Answer) string {
	var b strings.Builder
	for _, a := range answers {
		value := FormatAnswerValue(a.Value)
		if value == "" {
			continue
		}
		label := a.QuestionLabel
		if label == "" {
			label = a.QuestionID
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}
	return b.String()
}

func formatRules(rules []string) string {
	var b strings.Builder
	for _, r := range rules {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	return b.String()
}

func formatList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

// urgencyTone returns the tone instruction for an urgency level.
func urgencyTone(u wizard_models.Urgency) string {
	switch u {
	case wizard_models.UrgencyCritical:
		return "The request is CRITICAL: ask at most 3 to 4 questions in total, keep every question short and terse, skip anything non-essential."
	case wizard_models.UrgencyHigh:
		return "The request is urgent: keep questions concise and go straight to the essentials."
	}
	return ""
}

func needTypeLabel(n wizard_models.NeedType) string {
	switch n {
	case wizard_models.NeedWorks:
		return "works"
	case wizard_models.NeedSupplies:
		return "supplies"
	case wizard_models.NeedServices:
		return "services"
	case wizard_models.NeedIntellectualServices:
		return "intellectual services"
	}
	return "unspecified"
}

// LengthInstruction scales the expected output with the number of selected choices.
func LengthInstruction(selected int) string {
	switch {
	case selected <= 2:
		return "Write 2 to 3 sentences."
	case selected <= 4:
		return "Write 4 to 5 sentences."
	default:
		return "Write one full, well-developed paragraph."
	}
}
