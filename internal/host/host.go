// Package host defines the document and editor abstraction the markdown
// helpers operate on, along with an in-memory implementation.
package host

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLineOutOfRange is returned when an edit or selection addresses a
	// line the document does not have
	ErrLineOutOfRange = errors.New("line out of range")
	// ErrOverlappingEdits is returned when a batch contains edits whose
	// ranges intersect
	ErrOverlappingEdits = errors.New("overlapping edits")
)

// Position is a zero-based line and character offset
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p comes strictly before o
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Advance returns the position reached after writing text at p
func (p Position) Advance(text string) Position {
	nl := strings.Count(text, "\n")
	if nl == 0 {
		return Position{Line: p.Line, Character: p.Character + len(text)}
	}
	return Position{
		Line:      p.Line + nl,
		Character: len(text) - strings.LastIndex(text, "\n") - 1,
	}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Range is a half-open span between two positions
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// LineRange returns the range covering a full line of the given length
func LineRange(line, length int) Range {
	return Range{
		Start: Position{Line: line},
		End:   Position{Line: line, Character: length},
	}
}

// IsEmpty reports whether the range has no extent
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Selection is a range with a direction. Active is where the cursor is.
type Selection struct {
	Anchor Position `json:"anchor"`
	Active Position `json:"active"`
}

// Cursor returns an empty selection at the given position
func Cursor(line, character int) Selection {
	p := Position{Line: line, Character: character}
	return Selection{Anchor: p, Active: p}
}

// Start returns the earlier of anchor and active
func (s Selection) Start() Position {
	if s.Active.Before(s.Anchor) {
		return s.Active
	}
	return s.Anchor
}

// End returns the later of anchor and active
func (s Selection) End() Position {
	if s.Active.Before(s.Anchor) {
		return s.Anchor
	}
	return s.Active
}

// IsEmpty reports whether the selection is a plain cursor
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Active
}

// Range returns the selection as an ordered range
func (s Selection) Range() Range {
	return Range{Start: s.Start(), End: s.End()}
}

// TextEdit replaces a range with new text. Insertions use an empty range and
// deletions an empty NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// Replace builds an edit replacing r with text
func Replace(r Range, text string) TextEdit {
	return TextEdit{Range: r, NewText: text}
}

// Insert builds an edit inserting text at p
func Insert(p Position, text string) TextEdit {
	return TextEdit{Range: Range{Start: p, End: p}, NewText: text}
}

// Delete builds an edit removing r
func Delete(r Range) TextEdit {
	return TextEdit{Range: r}
}

// Document is read access to the lines of a markdown document
type Document interface {
	Path() string
	LineCount() int
	LineAt(line int) (string, bool)
	Text() string
}

// Editor is a document with selections that accepts edits
type Editor interface {
	Document() Document
	Selection() Selection
	Selections() []Selection
	SetSelection(sel Selection)
	SetSelections(sels []Selection)
	Apply(edits ...TextEdit) error
	InsertSnippet(snippet string) error
}

// LineText returns the text of a line or "" when out of range
func LineText(doc Document, line int) string {
	text, _ := doc.LineAt(line)
	return text
}

// TextIn returns the text of doc covered by r. Lines are joined with "\n"
// and out of range parts are dropped.
func TextIn(doc Document, r Range) string {
	if r.End.Before(r.Start) {
		r = Range{Start: r.End, End: r.Start}
	}
	var sb strings.Builder
	for line := r.Start.Line; line <= r.End.Line; line++ {
		text, ok := doc.LineAt(line)
		if !ok {
			break
		}
		from, to := 0, len(text)
		if line == r.Start.Line {
			from = min(max(r.Start.Character, 0), len(text))
		}
		if line == r.End.Line {
			to = min(max(r.End.Character, from), len(text))
		}
		if line > r.Start.Line {
			sb.WriteString("\n")
		}
		sb.WriteString(text[from:to])
	}
	return sb.String()
}
