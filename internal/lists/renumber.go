// Package lists keeps ordered list numbering consistent and toggles list
// markers on lines.
package lists

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/parser"
)

// MarkerOne is the numbering style where every item keeps "1."
const MarkerOne = "one"

// Settings controls automatic renumbering
type Settings struct {
	AutoRenumber bool   // Renumber after list edits
	Marker       string // "ordered" or "one"
}

// DefaultSettings returns settings with renumbering enabled
func DefaultSettings() Settings {
	return Settings{AutoRenumber: true, Marker: "ordered"}
}

// Renumberer fixes ordered list markers in an editor
type Renumberer struct {
	settings Settings
	logger   *zap.Logger
}

// NewRenumberer creates a renumberer. A nil logger disables logging.
func NewRenumberer(settings Settings, logger *zap.Logger) *Renumberer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renumberer{settings: settings, logger: logger}
}

// Enabled reports whether renumbering does anything under the settings
func (r *Renumberer) Enabled() bool {
	return r.settings.AutoRenumber && r.settings.Marker != MarkerOne
}

// FromSelection makes Fix start from the first ordered item at or after the
// primary selection
const FromSelection = -1

// Fix renumbers the ordered list item at line and every following item of
// the same list. Lines that are not ordered items and out of range lines
// are left alone.
func (r *Renumberer) Fix(ed host.Editor, line int) error {
	if !r.Enabled() {
		return nil
	}
	switch {
	case line == FromSelection:
		line = FindNextMarkerLine(ed.Document(), ed.Selection().Start().Line)
	case line < 0:
		return nil
	}
	_, err := r.fixRun(ed, line)
	return err
}

// FixAll renumbers every ordered list in the document
func (r *Renumberer) FixAll(ed host.Editor) error {
	if !r.Enabled() {
		return nil
	}
	doc := ed.Document()
	for line := 0; line < doc.LineCount(); line++ {
		if !parser.IsOrderedItem(host.LineText(doc, line)) {
			continue
		}
		last, err := r.fixRun(ed, line)
		if err != nil {
			return err
		}
		if last > line {
			line = last
		}
	}
	return nil
}

// fixRun walks the list starting at line and returns the last line visited
func (r *Renumberer) fixRun(ed host.Editor, line int) (int, error) {
	doc := ed.Document()
	last := line
	for line >= 0 && line < doc.LineCount() {
		item, ok := parser.ParseOrderedItem(host.LineText(doc, line))
		if !ok {
			break
		}
		last = line

		fixed := LookUpward(doc, line, item.Indent())
		if edit, changed := markerEdit(line, item, fixed); changed {
			r.logger.Debug("renumber",
				zap.Int("line", line),
				zap.String("from", item.Number),
				zap.Int("to", fixed))
			if err := ed.Apply(edit); err != nil {
				return last, fmt.Errorf("renumber line %d: %w", line, err)
			}
		}
		line = nextItemLine(doc, line)
	}
	return last, nil
}

// markerEdit builds the replacement for an item whose number should be
// fixed. The text after the marker stays at its column, keeping at least
// one space.
func markerEdit(line int, item parser.OrderedItem, fixed int) (host.TextEdit, bool) {
	number := strconv.Itoa(fixed)
	if item.Number == number {
		return host.TextEdit{}, false
	}

	width := item.MarkerWidth()
	pad := max(1, width-len(number)-len(item.Delimiter))
	start := len(item.LeadingSpace)
	r := host.Range{
		Start: host.Position{Line: line, Character: start},
		End:   host.Position{Line: line, Character: start + width},
	}
	return host.Replace(r, number+item.Delimiter+strings.Repeat(" ", pad)), true
}

// nextItemLine returns the next ordered item belonging to the same list, or
// -1 once a blank line is followed by an under-indented line
func nextItemLine(doc host.Document, line int) int {
	for next := line + 1; next < doc.LineCount(); next++ {
		text := host.LineText(doc, next)
		if parser.IsOrderedItem(text) {
			return next
		}
		if parser.IsBlank(host.LineText(doc, next-1)) &&
			!strings.HasPrefix(text, "   ") &&
			!strings.HasPrefix(text, "\t") {
			return -1
		}
	}
	return -1
}

// FindNextMarkerLine returns the first ordered item at or after from. It
// does not search past a heading and returns -1 when nothing is found.
func FindNextMarkerLine(doc host.Document, from int) int {
	for line := max(from, 0); line < doc.LineCount(); line++ {
		text := host.LineText(doc, line)
		if parser.IsHeading(text) {
			return -1
		}
		if parser.IsOrderedItem(text) {
			return line
		}
	}
	return -1
}

// LookUpward returns the number the item at line should carry, given its
// indentation with tabs expanded.
func LookUpward(doc host.Document, line, indent int) int {
	for prev := line - 1; prev >= 0; prev-- {
		text := parser.ExpandTabs(host.LineText(doc, prev))

		if item, ok := parser.ParseOrderedItem(text); ok {
			lead := len(item.LeadingSpace)
			switch {
			case indent < lead:
				// deeper item, keep looking for a sibling
				continue
			case indent <= lead+len(item.Number):
				n, err := strconv.Atoi(item.Number)
				if err != nil {
					return 1
				}
				return n + 1
			default:
				// parent item
				return 1
			}
		}

		if lead, ok := parser.UnorderedIndent(text); ok {
			if indent >= lead {
				return 1
			}
			continue
		}

		if lead, ok := parser.TextIndent(text); ok && lead < 3 {
			return 1
		}
	}
	return 1
}
