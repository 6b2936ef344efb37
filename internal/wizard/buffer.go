package wizard

import (
	"encoding/json"
	"errors"
)

// SavedContent is the last explicitly committed editor snapshot: the rendered
// HTML plus the editor's structured document for re-opening later.
type SavedContent struct {
	HTML string
	JSON json.RawMessage
}

// EditBuffer tracks the last-saved editor content against live edits. The
// rich-text surface is an uncontrolled external widget, so the buffer never
// trusts its live content: a commit is an explicit user checkpoint, and
// submission is refused while edits have diverged from the last checkpoint.
type EditBuffer struct {
	saved SavedContent
	dirty bool
}

// MarkEdited records that the editor content has diverged from the last save.
func (b *EditBuffer) MarkEdited() {
	b.dirty = true
}

// Save commits the current editor content as the new checkpoint.
func (b *EditBuffer) Save(html string, structured json.RawMessage) {
	b.saved = SavedContent{HTML: html, JSON: structured}
	b.dirty = false
}

// Seed loads pre-existing content as a clean checkpoint (revision mode).
func (b *EditBuffer) Seed(html string, structured json.RawMessage) {
	b.Save(html, structured)
}

// Dirty reports whether the editor has unsaved changes.
func (b *EditBuffer) Dirty() bool {
	return b.dirty
}

// Saved returns the last committed snapshot.
func (b *EditBuffer) Saved() SavedContent {
	return b.saved
}

var (
	ErrContentNotSaved = errors.New("you have unsaved editor changes; save before submitting")
	ErrContentEmpty    = errors.New("proposal content is empty; save the editor content first")
)

// CanSubmit enforces the submission gate: only a clean, non-empty buffer may
// be submitted. The check is synchronous; no backend call happens when it
// fails.
func (b *EditBuffer) CanSubmit() error {
	if b.dirty {
		return ErrContentNotSaved
	}
	if b.saved.HTML == "" {
		return ErrContentEmpty
	}
	return nil
}
