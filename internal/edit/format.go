// Package edit implements the formatting, heading and block insertion
// commands that operate on the primary selection of an editor.
package edit

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gubarz/mdassist/internal/host"
)

// Inline formatting markers
const (
	Bold          = "**"
	Italic        = "*"
	Strikethrough = "~~"
	CodeSpan      = "`"
	MathSpan      = "$"
)

// ToggleFormatting wraps the primary selection in marker, or unwraps it when
// the marker already surrounds it. An empty selection works on the word under
// the cursor, or inserts an empty pair when there is none.
func ToggleFormatting(ed host.Editor, marker string) error {
	sel := ed.Selection()
	if sel.IsEmpty() {
		return toggleAtCursor(ed, sel.Active, marker)
	}
	return toggleRange(ed, sel.Range(), marker)
}

func toggleRange(ed host.Editor, r host.Range, marker string) error {
	doc := ed.Document()
	n := len(marker)
	text := host.TextIn(doc, r)

	switch {
	case len(text) >= 2*n && strings.HasPrefix(text, marker) && strings.HasSuffix(text, marker):
		inner := text[n : len(text)-n]
		if err := ed.Apply(host.Replace(r, inner)); err != nil {
			return err
		}
		ed.SetSelection(host.Selection{Anchor: r.Start, Active: r.Start.Advance(inner)})
	case wrappedOutside(doc, r, marker):
		err := ed.Apply(
			host.Delete(host.Range{Start: shift(r.Start, -n), End: r.Start}),
			host.Delete(host.Range{Start: r.End, End: shift(r.End, n)}),
		)
		if err != nil {
			return err
		}
		ed.SetSelection(host.Selection{Anchor: shift(r.Start, -n), Active: shiftSameLine(r.End, r.Start, -n)})
	default:
		if err := ed.Apply(host.Insert(r.Start, marker), host.Insert(r.End, marker)); err != nil {
			return err
		}
		ed.SetSelection(host.Selection{Anchor: shift(r.Start, n), Active: shiftSameLine(r.End, r.Start, n)})
	}
	return nil
}

func toggleAtCursor(ed host.Editor, pos host.Position, marker string) error {
	doc := ed.Document()
	line := host.LineText(doc, pos.Line)
	c, n := pos.Character, len(marker)

	// empty pair around the cursor
	if c >= n && c+n <= len(line) && line[c-n:c] == marker && line[c:c+n] == marker {
		if err := ed.Apply(host.Delete(host.Range{Start: shift(pos, -n), End: shift(pos, n)})); err != nil {
			return err
		}
		ed.SetSelection(host.Cursor(pos.Line, c-n))
		return nil
	}

	if start, end := wordBounds(line, c); start < end {
		word := host.Range{
			Start: host.Position{Line: pos.Line, Character: start},
			End:   host.Position{Line: pos.Line, Character: end},
		}
		delta := n
		var edits []host.TextEdit
		if wrappedOutside(doc, word, marker) {
			delta = -n
			edits = append(edits,
				host.Delete(host.Range{Start: shift(word.Start, -n), End: word.Start}),
				host.Delete(host.Range{Start: word.End, End: shift(word.End, n)}))
		} else {
			edits = append(edits, host.Insert(word.Start, marker), host.Insert(word.End, marker))
		}
		if err := ed.Apply(edits...); err != nil {
			return err
		}
		ed.SetSelection(host.Cursor(pos.Line, c+delta))
		return nil
	}

	if err := ed.Apply(host.Insert(pos, marker+marker)); err != nil {
		return err
	}
	ed.SetSelection(host.Cursor(pos.Line, c+n))
	return nil
}

// wrappedOutside reports whether marker sits directly before and after r
func wrappedOutside(doc host.Document, r host.Range, marker string) bool {
	n := len(marker)
	first := host.LineText(doc, r.Start.Line)
	last := host.LineText(doc, r.End.Line)
	if r.Start.Character < n || r.End.Character+n > len(last) {
		return false
	}
	return first[r.Start.Character-n:r.Start.Character] == marker &&
		last[r.End.Character:r.End.Character+n] == marker
}

// wordBounds returns the byte span of the word touching offset c
func wordBounds(line string, c int) (int, int) {
	c = min(max(c, 0), len(line))
	start := c
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	end := c
	for end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return start, end
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func shift(p host.Position, delta int) host.Position {
	return host.Position{Line: p.Line, Character: p.Character + delta}
}

// shiftSameLine moves p only when it shares a line with the edited start
func shiftSameLine(p, start host.Position, delta int) host.Position {
	if p.Line != start.Line {
		return p
	}
	return shift(p, delta)
}
