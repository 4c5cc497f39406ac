package host

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/gubarz/mdassist/internal/parser"
	"github.com/gubarz/mdassist/internal/snippet"
)

// Buffer is an in-memory editor over a markdown document
type Buffer struct {
	path       string
	eol        string
	lines      []string
	selections []Selection
	dirty      bool
	events     *Events
	fs         afero.Fs
}

// NewBuffer creates a buffer holding text
func NewBuffer(path, text string) *Buffer {
	src := parser.Split(text)
	return &Buffer{
		path:       path,
		eol:        src.EOL,
		lines:      src.Lines,
		selections: []Selection{Cursor(0, 0)},
		fs:         afero.NewOsFs(),
	}
}

// Open loads a buffer from a file on fs
func Open(fs afero.Fs, path string) (*Buffer, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	b := NewBuffer(path, string(data))
	b.fs = fs
	return b, nil
}

// WithEvents attaches an event dispatcher
func (b *Buffer) WithEvents(events *Events) *Buffer {
	b.events = events
	return b
}

// Events returns the attached dispatcher, which may be nil
func (b *Buffer) Events() *Events {
	return b.events
}

// Save writes the buffer back to its path
func (b *Buffer) Save() error {
	if b.path == "" {
		return fmt.Errorf("save: buffer has no path")
	}
	perm := os.FileMode(0o644)
	if info, err := b.fs.Stat(b.path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := afero.WriteFile(b.fs, b.path, []byte(b.Text()), perm); err != nil {
		return fmt.Errorf("save %s: %w", b.path, err)
	}
	b.dirty = false
	return nil
}

// Dirty reports whether the buffer changed since it was loaded or saved
func (b *Buffer) Dirty() bool {
	return b.dirty
}

// ============================================================================
// Document
// ============================================================================

// Document returns the buffer itself
func (b *Buffer) Document() Document {
	return b
}

// Path returns the file path of the buffer
func (b *Buffer) Path() string {
	return b.path
}

// LineCount returns the number of lines
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// LineAt returns the text of a line
func (b *Buffer) LineAt(line int) (string, bool) {
	if line < 0 || line >= len(b.lines) {
		return "", false
	}
	return b.lines[line], true
}

// Lines returns a copy of all lines
func (b *Buffer) Lines() []string {
	return append([]string(nil), b.lines...)
}

// Text returns the whole document
func (b *Buffer) Text() string {
	return parser.Source{Lines: b.lines, EOL: b.eol}.Join()
}

// ============================================================================
// Selections
// ============================================================================

// Selection returns the primary selection
func (b *Buffer) Selection() Selection {
	return b.selections[0]
}

// Selections returns all selections, primary first
func (b *Buffer) Selections() []Selection {
	return append([]Selection(nil), b.selections...)
}

// SetSelection replaces all selections with sel
func (b *Buffer) SetSelection(sel Selection) {
	b.SetSelections([]Selection{sel})
}

// SetSelections replaces all selections. Positions are clamped to the
// document.
func (b *Buffer) SetSelections(sels []Selection) {
	if len(sels) == 0 {
		sels = []Selection{Cursor(0, 0)}
	}
	clamped := make([]Selection, len(sels))
	for i, s := range sels {
		clamped[i] = Selection{Anchor: b.clamp(s.Anchor), Active: b.clamp(s.Active)}
	}
	b.selections = clamped
	b.events.PublishSelectionChanged(b)
}

func (b *Buffer) clamp(p Position) Position {
	if p.Line < 0 {
		return Position{}
	}
	if p.Line >= len(b.lines) {
		last := len(b.lines) - 1
		return Position{Line: last, Character: len(b.lines[last])}
	}
	if p.Character < 0 {
		p.Character = 0
	}
	if n := len(b.lines[p.Line]); p.Character > n {
		p.Character = n
	}
	return p
}

// TextIn returns the text covered by a range
func (b *Buffer) TextIn(r Range) string {
	return TextIn(b, Range{Start: b.clamp(r.Start), End: b.clamp(r.End)})
}

// ============================================================================
// Edits
// ============================================================================

// Apply applies a batch of edits atomically. Ranges refer to the document
// before any edit of the batch is applied.
func (b *Buffer) Apply(edits ...TextEdit) error {
	if len(edits) == 0 {
		return nil
	}
	sorted := append([]TextEdit(nil), edits...)
	for i, e := range sorted {
		if e.Range.End.Before(e.Range.Start) {
			sorted[i].Range = Range{Start: e.Range.End, End: e.Range.Start}
		}
		if err := b.validate(sorted[i].Range); err != nil {
			return err
		}
	}
	// insertions sort ahead of a replacement starting at the same position
	sort.SliceStable(sorted, func(i, j int) bool {
		a, c := sorted[i].Range, sorted[j].Range
		if a.Start != c.Start {
			return a.Start.Before(c.Start)
		}
		return a.IsEmpty() && !c.IsEmpty()
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Range.Start.Before(sorted[i-1].Range.End) {
			return fmt.Errorf("%w: %s and %s", ErrOverlappingEdits, sorted[i-1].Range.Start, sorted[i].Range.Start)
		}
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		b.replace(sorted[i])
	}
	b.dirty = true
	b.selections = b.clampAll(b.selections)
	b.events.PublishDidChange(b)
	return nil
}

func (b *Buffer) validate(r Range) error {
	for _, p := range []Position{r.Start, r.End} {
		if p.Line < 0 || p.Line >= len(b.lines) {
			return fmt.Errorf("%w: line %d of %d", ErrLineOutOfRange, p.Line, len(b.lines))
		}
		if p.Character < 0 || p.Character > len(b.lines[p.Line]) {
			return fmt.Errorf("%w: character %d on line %d", ErrLineOutOfRange, p.Character, p.Line)
		}
	}
	return nil
}

func (b *Buffer) replace(e TextEdit) {
	start, end := e.Range.Start, e.Range.End
	head := b.lines[start.Line][:start.Character]
	tail := b.lines[end.Line][end.Character:]

	inserted := strings.Split(strings.ReplaceAll(e.NewText, "\r\n", "\n"), "\n")
	inserted[0] = head + inserted[0]
	inserted[len(inserted)-1] += tail

	lines := make([]string, 0, len(b.lines)-(end.Line-start.Line)+len(inserted)-1)
	lines = append(lines, b.lines[:start.Line]...)
	lines = append(lines, inserted...)
	lines = append(lines, b.lines[end.Line+1:]...)
	b.lines = lines
}

func (b *Buffer) clampAll(sels []Selection) []Selection {
	out := make([]Selection, len(sels))
	for i, s := range sels {
		out[i] = Selection{Anchor: b.clamp(s.Anchor), Active: b.clamp(s.Active)}
	}
	return out
}

// InsertSnippet replaces the primary selection with the expanded snippet
// and selects its first tab stop
func (b *Buffer) InsertSnippet(s string) error {
	sel := b.Selection()
	r := sel.Range()
	result := snippet.Expand(s, map[string]string{
		snippet.SelectedText: b.TextIn(r),
	})
	if err := b.Apply(Replace(r, result.Text)); err != nil {
		return err
	}

	lo, hi := result.Cursor()
	b.SetSelection(Selection{
		Anchor: offsetPosition(r.Start, result.Text, lo),
		Active: offsetPosition(r.Start, result.Text, hi),
	})
	return nil
}

// offsetPosition returns the position reached after writing text[:offset]
// starting at origin
func offsetPosition(origin Position, text string, offset int) Position {
	return origin.Advance(text[:offset])
}
