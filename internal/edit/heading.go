package edit

import (
	"sort"
	"strings"

	"github.com/gubarz/mdassist/internal/host"
)

// MaxHeadingLevel is the deepest ATX heading
const MaxHeadingLevel = 6

// HeadingUp raises the heading level of the active line. A plain line
// becomes a level 1 heading and level 6 stays as it is.
func HeadingUp(ed host.Editor) error {
	line := ed.Selection().Active.Line
	text := host.LineText(ed.Document(), line)
	start := host.Position{Line: line}

	switch {
	case !strings.HasPrefix(text, "#"):
		return ed.Apply(host.Insert(start, "# "))
	case !strings.HasPrefix(text, strings.Repeat("#", MaxHeadingLevel)):
		return ed.Apply(host.Insert(start, "#"))
	}
	return nil
}

// HeadingDown lowers the heading level of the active line, turning a level
// 1 heading back into a plain line
func HeadingDown(ed host.Editor) error {
	line := ed.Selection().Active.Line
	text := host.LineText(ed.Document(), line)

	switch {
	case strings.HasPrefix(text, "# "):
		return ed.Apply(host.Delete(lineSpan(line, 0, 2)))
	case strings.HasPrefix(text, "#"):
		return ed.Apply(host.Delete(lineSpan(line, 0, 1)))
	}
	return nil
}

// ToggleQuote prefixes the selected lines with "> ", or strips the prefix
// when every non-blank selected line is already quoted
func ToggleQuote(ed host.Editor) error {
	doc := ed.Document()
	lines := SelectedLines(ed)

	quoted, content := 0, 0
	for _, line := range lines {
		text := host.LineText(doc, line)
		if strings.TrimSpace(text) == "" {
			continue
		}
		content++
		if strings.HasPrefix(text, ">") {
			quoted++
		}
	}
	unquote := content > 0 && quoted == content

	var edits []host.TextEdit
	for _, line := range lines {
		text := host.LineText(doc, line)
		switch {
		case unquote && strings.HasPrefix(text, "> "):
			edits = append(edits, host.Delete(lineSpan(line, 0, 2)))
		case unquote && strings.HasPrefix(text, ">"):
			edits = append(edits, host.Delete(lineSpan(line, 0, 1)))
		case !unquote && !strings.HasPrefix(text, ">"):
			edits = append(edits, host.Insert(host.Position{Line: line}, "> "))
		}
	}
	return ed.Apply(edits...)
}

// SelectedLines returns every line touched by a selection, ascending. An
// empty selection contributes its active line.
func SelectedLines(ed host.Editor) []int {
	seen := make(map[int]bool)
	var lines []int
	for _, sel := range ed.Selections() {
		first, last := sel.Start().Line, sel.End().Line
		if sel.IsEmpty() {
			first, last = sel.Active.Line, sel.Active.Line
		}
		for line := first; line <= last; line++ {
			if !seen[line] {
				seen[line] = true
				lines = append(lines, line)
			}
		}
	}
	sort.Ints(lines)
	return lines
}

func lineSpan(line, from, to int) host.Range {
	return host.Range{
		Start: host.Position{Line: line, Character: from},
		End:   host.Position{Line: line, Character: to},
	}
}
