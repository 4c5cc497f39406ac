package edit

import (
	"strings"

	"github.com/gubarz/mdassist/internal/host"
)

// Snippets inserted by the block commands. The selection, or the whole
// current line when nothing is selected, becomes $TM_SELECTED_TEXT.
const (
	CodeBlockSnippet = "\n```${1:language}\n$TM_SELECTED_TEXT$0\n```"
	MathBlockSnippet = "\n$$\n$TM_SELECTED_TEXT$0\n$$"
	MermaidSnippet   = "\n```mermaid$0\n$TM_SELECTED_TEXT\n```"
	TableSnippet     = "| ${1:Column1} | ${2:Column2} | ${3:Column3} |\n" +
		"| ------- | ------- | ------- |\n" +
		"| ${4:Item1}   | ${5:Item1}   | ${6:Item1}   |\n" +
		"${0}\n$TM_SELECTED_TEXT"
	ImageSnippet   = "![${1:alt text}](${2:$TM_SELECTED_TEXT})"
	LinkSnippet    = "[${1:${TM_SELECTED_TEXT:title}}](${2:https://example.com})"
	DividerSnippet = "\n---\n$0"
	NewLineSnippet = "\n$0"
)

// Templates inserted on an emptied line by quick fixes and line tools
const (
	ImageTemplate   = "![${1:title}](${2:image.png})"
	LinkTemplate    = "[${1:title}](${2:https://example.com})"
	TaskTemplate    = "- [${1| ,x|}] ${2:text}"
	MermaidTemplate = "```mermaid\n${1}\n```"
	TableTemplate   = "| ${1:Column1} | ${2:Column2} | ${3:Column3} |\n" +
		"| ------- | ------- | ------- |\n" +
		"| ${4:Item1}   | ${5:Item1}   | ${6:Item1}   |\n" +
		"${0}"
)

// Container describes a fenced block wrapped around the selected lines
type Container struct {
	Open  string // First line prefix
	Head  string // Snippet following Open on the first line
	Close string // Last line
}

var (
	// InfoContainer is a ::: block with an info string
	InfoContainer = Container{Open: ":::", Head: " ${1:info}", Close: ":::"}
	// DetailsContainer is a collapsible html details block
	DetailsContainer = Container{Open: "<details> ", Head: "<summary> ${1:title} </summary>", Close: "</details>"}
)

// InsertBlock selects the current line when the selection is empty and
// replaces the selection with the snippet
func InsertBlock(ed host.Editor, snip string) error {
	sel := ed.Selection()
	if sel.IsEmpty() {
		line := sel.Active.Line
		ed.SetSelection(host.Selection{
			Anchor: host.Position{Line: line},
			Active: host.Position{Line: line, Character: len(host.LineText(ed.Document(), line))},
		})
	}
	return ed.InsertSnippet(snip)
}

// InsertAfterLine places the cursor at the end of the active line and
// inserts the snippet there. Used for dividers and blank lines.
func InsertAfterLine(ed host.Editor, snip string) error {
	line := ed.Selection().Active.Line
	ed.SetSelection(host.Cursor(line, len(host.LineText(ed.Document(), line))))
	return ed.InsertSnippet(snip)
}

// ReplaceLine clears the given line and inserts the snippet in its place
func ReplaceLine(ed host.Editor, line int, snip string) error {
	text, ok := ed.Document().LineAt(line)
	if !ok {
		return host.ErrLineOutOfRange
	}
	if text != "" {
		if err := ed.Apply(host.Delete(lineSpan(line, 0, len(text)))); err != nil {
			return err
		}
	}
	ed.SetSelection(host.Cursor(line, 0))
	return ed.InsertSnippet(snip)
}

// ToggleContainer removes the container around the selected lines when
// the lines just outside are its fences, and wraps the lines otherwise
func ToggleContainer(ed host.Editor, c Container) error {
	doc := ed.Document()
	sel := ed.Selection()
	first, last := sel.Start().Line, sel.End().Line

	above, okAbove := doc.LineAt(first - 1)
	below, okBelow := doc.LineAt(last + 1)
	if okAbove && okBelow &&
		strings.HasPrefix(above, strings.TrimSpace(c.Open)) &&
		strings.TrimSpace(below) == c.Close {
		return ed.Apply(
			host.Delete(host.Range{
				Start: host.Position{Line: first - 1},
				End:   host.Position{Line: first},
			}),
			host.Delete(host.Range{
				Start: host.Position{Line: last, Character: len(host.LineText(doc, last))},
				End:   host.Position{Line: last + 1, Character: len(below)},
			}),
		)
	}

	ed.SetSelection(host.Selection{
		Anchor: host.Position{Line: first},
		Active: host.Position{Line: last, Character: len(host.LineText(doc, last))},
	})
	return ed.InsertSnippet(c.Open + c.Head + "\n$TM_SELECTED_TEXT$0\n" + c.Close)
}
