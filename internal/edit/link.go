package edit

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gubarz/mdassist/internal/host"
)

const defaultLinkURL = "https://example.com"

var (
	inlineLinkRe  = regexp.MustCompile(`!?\[([^\]]*)\]\(([^)]*)\)`)
	footnoteDefRe = regexp.MustCompile(`^\[\^(\d+)\]:`)
)

// DeleteLink turns the inline link under the cursor into its text. Images
// and lines without a link under the cursor are left alone.
func DeleteLink(ed host.Editor) error {
	pos := ed.Selection().Active
	line := host.LineText(ed.Document(), pos.Line)

	for _, m := range inlineLinkRe.FindAllStringSubmatchIndex(line, -1) {
		start, end := m[0], m[1]
		if pos.Character < start || pos.Character > end {
			continue
		}
		if line[start] == '!' {
			return nil
		}
		text := line[m[2]:m[3]]
		if err := ed.Apply(host.Replace(lineSpan(pos.Line, start, end), text)); err != nil {
			return err
		}
		ed.SetSelection(host.Cursor(pos.Line, start+len(text)))
		return nil
	}
	return nil
}

// InsertFootnote inserts the next free numbered footnote reference at the
// cursor and appends its definition to the end of the document
func InsertFootnote(ed host.Editor) error {
	doc := ed.Document()
	next := 1
	for i := 0; i < doc.LineCount(); i++ {
		if m := footnoteDefRe.FindStringSubmatch(host.LineText(doc, i)); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= next {
				next = n + 1
			}
		}
	}
	label := fmt.Sprintf("[^%d]", next)
	if err := appendLine(ed, label+": "); err != nil {
		return err
	}
	return ed.InsertSnippet("$TM_SELECTED_TEXT" + label + "$0")
}

// InsertLinkReference turns the selection into a reference style link named
// after the cursor position and appends the reference definition
func InsertLinkReference(ed host.Editor) error {
	pos := ed.Selection().Active
	ref := fmt.Sprintf("reference_%d_%d", pos.Line, pos.Character)
	if err := appendLine(ed, fmt.Sprintf("[%s]: %s", ref, defaultLinkURL)); err != nil {
		return err
	}
	return ed.InsertSnippet("[${1:${TM_SELECTED_TEXT:text}}][" + ref + "]$0")
}

// InsertPath replaces the primary selection with the path of target
// relative to the document's directory, using forward slashes. Targets on
// another volume are inserted as given.
func InsertPath(ed host.Editor, target string) error {
	if target == "" {
		return nil
	}
	path := target
	if dir := filepath.Dir(ed.Document().Path()); filepath.IsAbs(target) && filepath.IsAbs(dir) {
		if rel, err := filepath.Rel(dir, target); err == nil {
			path = rel
		}
	}
	path = filepath.ToSlash(path)

	sel := ed.Selection()
	if err := ed.Apply(host.Replace(sel.Range(), path)); err != nil {
		return err
	}
	start := sel.Start()
	ed.SetSelection(host.Cursor(start.Line, start.Character+len(path)))
	return nil
}

// appendLine adds text as a new last line of the document
func appendLine(ed host.Editor, text string) error {
	doc := ed.Document()
	last := doc.LineCount() - 1
	end := host.Position{Line: last, Character: len(host.LineText(doc, last))}
	return ed.Apply(host.Insert(end, "\n"+text))
}
