// Package actions offers the quick fixes and inline line tools available on
// the line under the cursor.
package actions

import (
	"context"
	"fmt"

	"github.com/gubarz/mdassist/internal/host"
)

// Kind tells where an action is surfaced
type Kind string

const (
	KindQuickFix Kind = "quickfix"
	KindLens     Kind = "lens"
)

// Action is a user-invokable fix or button bound to a line
type Action struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Kind      Kind            `json:"kind"`
	Preferred bool            `json:"preferred,omitempty"`
	Line      int             `json:"line"`
	Edits     []host.TextEdit `json:"edits,omitempty"`
	Snippet   string          `json:"snippet,omitempty"`
	Command   string          `json:"command,omitempty"`
}

// Runner executes a registered command by id
type Runner interface {
	Run(ctx context.Context, id string, ed host.Editor) error
}

// Apply performs the action: edits first, then the snippet, then the
// command. Quick fix snippets go to the start of the action line, lens
// snippets replace the current selection.
func Apply(ctx context.Context, ed host.Editor, a Action, runner Runner) error {
	if len(a.Edits) > 0 {
		if err := ed.Apply(a.Edits...); err != nil {
			return fmt.Errorf("apply %s: %w", a.ID, err)
		}
	}
	if a.Snippet != "" {
		if a.Kind == KindQuickFix {
			ed.SetSelection(host.Cursor(a.Line, 0))
		}
		if err := ed.InsertSnippet(a.Snippet); err != nil {
			return fmt.Errorf("apply %s: %w", a.ID, err)
		}
	}
	if a.Command != "" {
		if runner == nil {
			return fmt.Errorf("apply %s: no command runner for %q", a.ID, a.Command)
		}
		if err := runner.Run(ctx, a.Command, ed); err != nil {
			return fmt.Errorf("apply %s: %w", a.ID, err)
		}
	}
	return nil
}

// Find returns the action with the given id or title
func Find(list []Action, key string) (Action, bool) {
	for _, a := range list {
		if a.ID == key || a.Title == key {
			return a, true
		}
	}
	return Action{}, false
}

// Preferred returns the first preferred action
func Preferred(list []Action) (Action, bool) {
	for _, a := range list {
		if a.Preferred {
			return a, true
		}
	}
	return Action{}, false
}

// clearLine empties a line, or returns nothing when it is already empty
func clearLine(line int, text string) []host.TextEdit {
	if text == "" {
		return nil
	}
	return []host.TextEdit{host.Delete(host.LineRange(line, len(text)))}
}
