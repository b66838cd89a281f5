package wizard

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"dossier/internal/models/wizard_models"
)

// DraftChange describes how a replacement draft differs from the draft it
// replaced. Counts are in runes.
type DraftChange struct {
	From      wizard_models.DraftOrigin `json:"from"`
	To        wizard_models.DraftOrigin `json:"to"`
	Inserted  int                       `json:"inserted"`
	Deleted   int                       `json:"deleted"`
	Unchanged int                       `json:"unchanged"`
	Patch     string                    `json:"patch,omitempty"`
}

// DiffDrafts summarizes how next differs from previous.
func DiffDrafts(previous, next wizard_models.Draft) *DraftChange {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(previous.Content, next.Content, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	change := &DraftChange{From: previous.Origin, To: next.Origin}
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			change.Inserted += n
		case diffmatchpatch.DiffDelete:
			change.Deleted += n
		default:
			change.Unchanged += n
		}
	}
	if change.Inserted > 0 || change.Deleted > 0 {
		change.Patch = dmp.PatchToText(dmp.PatchMake(previous.Content, diffs))
	}
	return change
}
