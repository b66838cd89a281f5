// Package prompts builds the messages sent to the completion provider.
// Every builder is a pure function of its input: no clock, no randomness, no I/O.
package prompts

import (
	"fmt"
	"strings"

	"dossier/internal/models/wizard_models"
	"dossier/pkg/utils"
)

// ChoiceCount is the number of candidate phrases requested per choices call.
const ChoiceCount = 5

type Prompt struct {
	Messages []wizard_models.ChatMessage
	Options  utils.CompletionOptions
}

// String renders the prompt as a single text, used for logging and comparison.
func (p Prompt) String() string {
	var b strings.Builder
	for _, m := range p.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n", m.Role, m.Content)
	}
	return b.String()
}

const administrativeRole = "You are an assistant helping a public buyer draft a procurement request dossier. " +
	"You write in a neutral, third-person, administrative register."

func systemPreamble(module wizard_models.Module, project wizard_models.ProjectContext) string {
	var b strings.Builder
	b.WriteString(administrativeRole)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Dossier: %s\n", project.Title)
	fmt.Fprintf(&b, "Type of need: %s\n", needTypeLabel(project.NeedType))
	fmt.Fprintf(&b, "Current section: %s\n", module.Title)
	if len(module.Rules) > 0 {
		b.WriteString("\nEditorial rules for this section:\n")
		b.WriteString(formatRules(module.Rules))
	}
	if tone := urgencyTone(project.Urgency); tone != "" {
		b.WriteString("\n")
		b.WriteString(tone)
		b.WriteString("\n")
	}
	return b.String()
}

type InitialInput struct {
	Module       wizard_models.Module
	Question     wizard_models.Question
	Project      wizard_models.ProjectContext
	Guidance     *wizard_models.GuidanceTable
	PriorAnswers []wizard_models.Answer
}

// BuildInitialPrompt opens a guided conversation on a question.
func BuildInitialPrompt(in InitialInput) Prompt {
	var guidance wizard_models.Guidance
	if in.Guidance != nil {
		guidance = in.Guidance.Resolve(in.Module.ID, in.Question.ID, in.Project.NeedType)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic to document: %s\n", in.Question.Label)
	if in.Question.Hint != "" {
		fmt.Fprintf(&b, "Hint: %s\n", in.Question.Hint)
	}
	if guidance.FirstQuestion != "" {
		fmt.Fprintf(&b, "Suggested first question: %s\n", guidance.FirstQuestion)
	}
	if guidance.Example != "" {
		fmt.Fprintf(&b, "Example of an expected answer: %s\n", guidance.Example)
	}
	if prior := FormatAnswers(in.PriorAnswers); prior != "" {
		b.WriteString("\nAnswers already given:\n")
		b.WriteString(prior)
	}
	b.WriteString("\nAsk the single most useful first question to document this topic. ")
	b.WriteString("Offer answer options only when a closed list makes sense.\n")
	b.WriteString(`Reply as JSON: {"question": string, "options": string[] | null, "example": string, "inputType": "text" | "textarea" | "radio" | "checkbox"}`)

	return Prompt{
		Messages: []wizard_models.ChatMessage{
			{Role: wizard_models.RoleSystem, Content: systemPreamble(in.Module, in.Project)},
			{Role: wizard_models.RoleUser, Content: b.String()},
		},
		Options: utils.CompletionOptions{MaxTokens: 600, Temperature: 0.4, JSONMode: true},
	}
}

type IntegrationInput struct {
	Module       wizard_models.Module
	Question     wizard_models.Question
	Project      wizard_models.ProjectContext
	History      []wizard_models.ChatMessage
	CurrentText  string
	LatestReply  string
	PriorAnswers []wizard_models.Answer
}

// BuildIntegrationPrompt merges the latest user reply into the running text.
func BuildIntegrationPrompt(in IntegrationInput) Prompt {
	messages := []wizard_models.ChatMessage{
		{Role: wizard_models.RoleSystem, Content: systemPreamble(in.Module, in.Project)},
	}
	messages = append(messages, in.History...)

	var b strings.Builder
	fmt.Fprintf(&b, "Topic being documented: %s\n", in.Question.Label)
	if prior := FormatAnswers(in.PriorAnswers); prior != "" {
		b.WriteString("\nAnswers already given:\n")
		b.WriteString(prior)
	}
	b.WriteString("\nText written so far:\n")
	if strings.TrimSpace(in.CurrentText) == "" {
		b.WriteString("(empty)\n")
	} else {
		b.WriteString(in.CurrentText)
		b.WriteString("\n")
	}
	b.WriteString("\nLatest reply from the buyer:\n")
	b.WriteString(in.LatestReply)
	b.WriteString("\n\nIntegrate the latest reply into the text. Rewrite it in the third person, administrative register, ")
	b.WriteString("without repeating information already present. Then either ask the next most useful question ")
	b.WriteString("or declare the topic complete when nothing essential is missing.\n")
	b.WriteString(`Reply as JSON: {"integratedText": string, "question": string | null, "options": string[] | null, "example": string | null, "inputType": "text" | "textarea" | "radio" | "checkbox", "isComplete": boolean}`)

	messages = append(messages, wizard_models.ChatMessage{Role: wizard_models.RoleUser, Content: b.String()})
	return Prompt{
		Messages: messages,
		Options:  utils.CompletionOptions{MaxTokens: 1200, Temperature: 0.3, JSONMode: true},
	}
}

type ChoicesInput struct {
	Module       wizard_models.Module
	Question     wizard_models.Question
	Project      wizard_models.ProjectContext
	PriorAnswers []wizard_models.Answer
	AlreadyShown []string
}

// BuildChoicesPrompt asks for ChoiceCount short, combinable candidate phrases.
func BuildChoicesPrompt(in ChoicesInput) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", in.Question.Label)
	if in.Question.Hint != "" {
		fmt.Fprintf(&b, "Hint: %s\n", in.Question.Hint)
	}
	if prior := FormatAnswers(in.PriorAnswers); prior != "" {
		b.WriteString("\nContext from previous answers:\n")
		b.WriteString(prior)
	}
	if len(in.AlreadyShown) > 0 {
		b.WriteString("\nChoices already proposed (do not repeat or paraphrase them):\n")
		b.WriteString(formatList(in.AlreadyShown))
	}
	fmt.Fprintf(&b, "\nPropose exactly %d short candidate phrases answering the question. ", ChoiceCount)
	b.WriteString("Each phrase must be specific to this dossier's context, usable on its own and combinable with the others. ")
	b.WriteString(`Never propose generic options such as "other", "none" or "not applicable".` + "\n")
	fmt.Fprintf(&b, `Reply as JSON: {"choices": [%d strings]}`, ChoiceCount)

	return Prompt{
		Messages: []wizard_models.ChatMessage{
			{Role: wizard_models.RoleSystem, Content: systemPreamble(in.Module, in.Project)},
			{Role: wizard_models.RoleUser, Content: b.String()},
		},
		Options: utils.CompletionOptions{MaxTokens: 500, Temperature: 0.7, JSONMode: true},
	}
}

type AssemblyInput struct {
	Module   wizard_models.Module
	Question wizard_models.Question
	Project  wizard_models.ProjectContext
	Selected []string
	FreeText string
}

// BuildAssemblyPrompt turns selected choices into one cohesive paragraph.
func BuildAssemblyPrompt(in AssemblyInput) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", in.Question.Label)
	b.WriteString("\nElements selected by the buyer:\n")
	b.WriteString(formatList(in.Selected))
	if free := strings.TrimSpace(in.FreeText); free != "" {
		b.WriteString("\nAdditional information from the buyer:\n")
		b.WriteString(free)
		b.WriteString("\n")
	}
	b.WriteString("\nWrite one cohesive, professional paragraph in the third person that integrates every selected element")
	if strings.TrimSpace(in.FreeText) != "" {
		b.WriteString(" and the additional information")
	}
	b.WriteString(". Do not add facts that were not provided. ")
	b.WriteString(LengthInstruction(len(in.Selected)))
	b.WriteString("\n")
	b.WriteString(`Reply as JSON: {"generatedText": string}`)

	return Prompt{
		Messages: []wizard_models.ChatMessage{
			{Role: wizard_models.RoleSystem, Content: systemPreamble(in.Module, in.Project)},
			{Role: wizard_models.RoleUser, Content: b.String()},
		},
		Options: utils.CompletionOptions{MaxTokens: 800, Temperature: 0.3, JSONMode: true},
	}
}

type DraftInput struct {
	Module     wizard_models.Module
	Project    wizard_models.ProjectContext
	Answers    []wizard_models.Answer
	References []string
}

// BuildModuleDraftPrompt assembles the section text from every answer of the module.
func BuildModuleDraftPrompt(in DraftInput) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the \"%s\" section of the dossier from the buyer's answers below.\n", in.Module.Title)
	if in.Module.AssembleInstruction != "" {
		b.WriteString(in.Module.AssembleInstruction)
		b.WriteString("\n")
	}
	b.WriteString("\nAnswers:\n")
	b.WriteString(FormatAnswers(in.Answers))
	if len(in.References) > 0 {
		b.WriteString("\nValidated sections from other dossiers, for style and structure only (never copy facts from them):\n")
		for i, ref := range in.References {
			fmt.Fprintf(&b, "--- reference %d ---\n%s\n", i+1, strings.TrimSpace(ref))
		}
	}
	b.WriteString("\nUse every answer, in the third person and administrative register, without inventing facts.\n")
	b.WriteString(`Reply as JSON: {"content": string}`)

	return Prompt{
		Messages: []wizard_models.ChatMessage{
			{Role: wizard_models.RoleSystem, Content: systemPreamble(in.Module, in.Project)},
			{Role: wizard_models.RoleUser, Content: b.String()},
		},
		Options: utils.CompletionOptions{MaxTokens: 2000, Temperature: 0.3, JSONMode: true},
	}
}
