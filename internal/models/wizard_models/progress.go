package wizard_models

type ModuleStatus string

const (
	StatusNotStarted ModuleStatus = "not_started"
	StatusInProgress ModuleStatus = "in_progress"
	StatusCompleted  ModuleStatus = "completed"
)

type ModuleProgress struct {
	ModuleID string       `json:"module_id"`
	Status   ModuleStatus `json:"status"`
	Progress int          `json:"progress"`
}

type DraftOrigin string

const (
	OriginInitial     DraftOrigin = "initial"
	OriginRegenerated DraftOrigin = "regenerated"
	OriginEdited      DraftOrigin = "edited"
	OriginAnswersOnly DraftOrigin = "answers_only"
)

// Draft is generated module content awaiting acceptance.
type Draft struct {
	ModuleID string      `json:"module_id"`
	Content  string      `json:"content"`
	Origin   DraftOrigin `json:"origin"`
}

// Section is the durable, document-facing artifact of a validated module.
type Section struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type NeedType string

const (
	NeedWorks                NeedType = "works"
	NeedSupplies             NeedType = "supplies"
	NeedServices             NeedType = "services"
	NeedIntellectualServices NeedType = "intellectual_services"
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// ProjectContext carries the per-dossier attributes that shape prompts.
type ProjectContext struct {
	ProjectID string   `json:"project_id"`
	Title     string   `json:"title"`
	NeedType  NeedType `json:"need_type"`
	Urgency   Urgency  `json:"urgency"`
}

// WizardState is what the dossier store hands back when a wizard is reopened.
type WizardState struct {
	Answers          []Answer        `json:"answers"`
	ValidatedModules map[string]bool `json:"validated_modules"`
	Sections         []Section       `json:"sections"`
}
