package wizard

import (
	"math"
	"sync"

	"dossier/internal/models/wizard_models"
)

// ValidationLedger records which generated modules the user has accepted.
// Acceptance survives clearing the answers.
type ValidationLedger struct {
	mu        sync.Mutex
	validated map[string]bool
}

func NewValidationLedger(initial map[string]bool) *ValidationLedger {
	l := &ValidationLedger{validated: make(map[string]bool, len(initial))}
	for id, ok := range initial {
		if ok {
			l.validated[id] = true
		}
	}
	return l
}

func (l *ValidationLedger) MarkValidated(moduleID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.validated[moduleID] = true
}

func (l *ValidationLedger) IsValidated(moduleID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.validated[moduleID]
}

// ProgressCalculator derives module and overall completion; nothing is stored.
type ProgressCalculator struct {
	config *wizard_models.WizardConfiguration
	store  *AnswerStore
	ledger *ValidationLedger
}

func NewProgressCalculator(config *wizard_models.WizardConfiguration, store *AnswerStore, ledger *ValidationLedger) *ProgressCalculator {
	return &ProgressCalculator{config: config, store: store, ledger: ledger}
}

func (p *ProgressCalculator) ModuleProgress(moduleID string) wizard_models.ModuleProgress {
	m, ok := p.config.Module(moduleID)
	if !ok {
		return wizard_models.ModuleProgress{ModuleID: moduleID, Status: wizard_models.StatusNotStarted}
	}

	if m.HasAssemblePrompt && p.ledger.IsValidated(m.ID) {
		return wizard_models.ModuleProgress{ModuleID: m.ID, Status: wizard_models.StatusCompleted, Progress: 100}
	}

	answered, total, anyAnswer := p.coverage(m)
	percent := 100
	if total > 0 {
		percent = answered * 100 / total
	}

	if m.HasAssemblePrompt {
		// Raw answers never complete a generated module.
		if percent > 99 {
			percent = 99
		}
		if !anyAnswer {
			return wizard_models.ModuleProgress{ModuleID: m.ID, Status: wizard_models.StatusNotStarted, Progress: 0}
		}
		return wizard_models.ModuleProgress{ModuleID: m.ID, Status: wizard_models.StatusInProgress, Progress: percent}
	}

	switch {
	case percent == 100:
		return wizard_models.ModuleProgress{ModuleID: m.ID, Status: wizard_models.StatusCompleted, Progress: 100}
	case !anyAnswer:
		return wizard_models.ModuleProgress{ModuleID: m.ID, Status: wizard_models.StatusNotStarted, Progress: percent}
	default:
		return wizard_models.ModuleProgress{ModuleID: m.ID, Status: wizard_models.StatusInProgress, Progress: percent}
	}
}

// coverage counts satisfied required questions. A module without required
// questions is measured over all of its questions.
func (p *ProgressCalculator) coverage(m wizard_models.Module) (answered, total int, anyAnswer bool) {
	required := m.RequiredQuestions()
	measured := required
	if len(required) == 0 {
		measured = m.Questions
	}
	for _, q := range m.Questions {
		v, ok := p.store.Get(m.ID, q.ID)
		if HasValue(q, v, ok) {
			anyAnswer = true
			break
		}
	}
	for _, q := range measured {
		v, ok := p.store.Get(m.ID, q.ID)
		if HasValue(q, v, ok) {
			answered++
		}
	}
	return answered, len(measured), anyAnswer
}

func (p *ProgressCalculator) All() []wizard_models.ModuleProgress {
	out := make([]wizard_models.ModuleProgress, 0, len(p.config.Modules))
	for _, m := range p.config.Modules {
		out = append(out, p.ModuleProgress(m.ID))
	}
	return out
}

// OverallProgress is the unweighted mean of module percentages, rounded down
// so that 100 is only reported when every module is at 100.
func (p *ProgressCalculator) OverallProgress() int {
	if len(p.config.Modules) == 0 {
		return 0
	}
	sum := 0
	for _, mp := range p.All() {
		sum += mp.Progress
	}
	return int(math.Floor(float64(sum) / float64(len(p.config.Modules))))
}

func (p *ProgressCalculator) AllCompleted() bool {
	for _, mp := range p.All() {
		if mp.Status != wizard_models.StatusCompleted {
			return false
		}
	}
	return len(p.config.Modules) > 0
}

// FirstIncomplete returns the index of the first module not completed, or -1.
func (p *ProgressCalculator) FirstIncomplete() int {
	for i, mp := range p.All() {
		if mp.Status != wizard_models.StatusCompleted {
			return i
		}
	}
	return -1
}
