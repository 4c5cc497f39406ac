package lists

import (
	"fmt"

	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/parser"
)

// DefaultCandidates is the marker cycle used when none is configured
var DefaultCandidates = []parser.MarkerKind{
	parser.MarkerDash,
	parser.MarkerStar,
	parser.MarkerPlus,
	parser.MarkerNumbered,
	parser.MarkerNumberedParen,
	parser.MarkerTask,
}

// Toggle switches every selected line to the given marker kind. Lines that
// already carry that kind lose their marker, and MarkerNone strips markers.
// Numbering is fixed afterwards.
func (r *Renumberer) Toggle(ed host.Editor, kind parser.MarkerKind) error {
	doc := ed.Document()
	seen := make(map[int]bool)
	var edits []host.TextEdit

	for _, sel := range ed.Selections() {
		first, last := sel.Start().Line, sel.End().Line
		if sel.IsEmpty() {
			first, last = sel.Active.Line, sel.Active.Line
		}
		for line := first; line <= last; line++ {
			if seen[line] {
				continue
			}
			seen[line] = true
			edits = append(edits, toggleLine(doc, line, kind)...)
		}
	}

	if err := ed.Apply(edits...); err != nil {
		return fmt.Errorf("toggle %s list: %w", kind, err)
	}
	return r.Fix(ed, FromSelection)
}

// Cycle moves the lines of the primary selection to the next candidate marker
func (r *Renumberer) Cycle(ed host.Editor, candidates []parser.MarkerKind) error {
	line := host.LineText(ed.Document(), ed.Selection().Active.Line)
	current := parser.ClassifyLine(line)
	next := NextCandidate(current, candidates)
	if next == current {
		return nil
	}
	if next == parser.MarkerNone {
		// toggling to the current kind strips it
		return r.Toggle(ed, current)
	}
	return r.Toggle(ed, next)
}

func toggleLine(doc host.Document, line int, kind parser.MarkerKind) []host.TextEdit {
	text, ok := doc.LineAt(line)
	if !ok {
		return nil
	}
	indent := parser.Indentation(text)
	current := parser.Classify(text[indent:])
	end := parser.MarkerEnd(current, text)

	var edits []host.TextEdit
	if end != indent {
		edits = append(edits, host.Delete(host.Range{
			Start: host.Position{Line: line, Character: indent},
			End:   host.Position{Line: line, Character: end},
		}))
	}
	if kind != parser.MarkerNone && current != kind {
		edits = append(edits, host.Insert(host.Position{Line: line, Character: indent}, kind.Text()))
	}
	return edits
}

// NextCandidate returns the marker following current in candidates,
// wrapping to the first
func NextCandidate(current parser.MarkerKind, candidates []parser.MarkerKind) parser.MarkerKind {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	for i, c := range candidates {
		if c == current && i < len(candidates)-1 {
			return candidates[i+1]
		}
	}
	return candidates[0]
}

// CandidateMarkers converts configured marker names into a toggle cycle.
// Unknown names are dropped and MarkerNone closes the cycle so a line can
// return to plain text. Without configuration the defaults apply.
func CandidateMarkers(names []string) []parser.MarkerKind {
	if names == nil {
		return DefaultCandidates
	}
	kinds := make([]parser.MarkerKind, 0, len(names)+1)
	for _, name := range names {
		if kind := parser.ParseMarkerName(name); kind != parser.MarkerNone {
			kinds = append(kinds, kind)
		}
	}
	return append(kinds, parser.MarkerNone)
}
