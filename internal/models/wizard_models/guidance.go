package wizard_models

// Guidance is the first-question text and example shown when a guided or chat
// flow opens on a question.
type Guidance struct {
	FirstQuestion string `json:"first_question" yaml:"first_question"`
	Example       string `json:"example" yaml:"example"`
}

func (g Guidance) empty() bool {
	return g.FirstQuestion == "" && g.Example == ""
}

// GuidanceEntry keys a guidance text by question or module, optionally for a
// single need type. An empty NeedType matches any need type.
type GuidanceEntry struct {
	ModuleID   string   `json:"module_id" yaml:"module_id"`
	QuestionID string   `json:"question_id,omitempty" yaml:"question_id,omitempty"`
	NeedType   NeedType `json:"need_type,omitempty" yaml:"need_type,omitempty"`
	Guidance   `yaml:",inline"`
}

type GuidanceTable struct {
	Default Guidance        `json:"default" yaml:"default"`
	Entries []GuidanceEntry `json:"entries" yaml:"entries"`

	index map[guidanceKey]Guidance
}

type guidanceKey struct {
	module   string
	question string
	need     NeedType
}

// Compile builds the lookup index. Later entries override earlier ones with the same key.
func (t *GuidanceTable) Compile() {
	t.index = t.build()
}

func (t *GuidanceTable) build() map[guidanceKey]Guidance {
	index := make(map[guidanceKey]Guidance, len(t.Entries))
	for _, e := range t.Entries {
		index[guidanceKey{module: e.ModuleID, question: e.QuestionID, need: e.NeedType}] = e.Guidance
	}
	return index
}

// Resolve walks question+need, question, module+need, module, then the default.
func (t *GuidanceTable) Resolve(moduleID, questionID string, need NeedType) Guidance {
	index := t.index
	if index == nil {
		index = t.build()
	}
	chain := []guidanceKey{
		{module: moduleID, question: questionID, need: need},
		{module: moduleID, question: questionID},
		{module: moduleID, need: need},
		{module: moduleID},
	}
	for _, key := range chain {
		if g, ok := index[key]; ok && !g.empty() {
			return g
		}
	}
	return t.Default
}
