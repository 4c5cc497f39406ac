package actions

import (
	"github.com/gubarz/mdassist/internal/edit"
	"github.com/gubarz/mdassist/internal/host"
)

// LensProvider offers inline line tools for the line under the cursor. The
// current line is owned by the provider and only moves through its
// selection changed handler.
type LensProvider struct {
	enabled     bool
	currentLine int
	lastLine    int
	onChange    func()
}

// NewLensProvider creates a provider. A disabled provider never returns
// lenses.
func NewLensProvider(enabled bool) *LensProvider {
	return &LensProvider{enabled: enabled, lastLine: -1}
}

// Register subscribes the provider to selection changes
func (p *LensProvider) Register(events *host.Events) {
	if events == nil {
		return
	}
	events.OnSelectionChanged(p.selectionChanged)
}

// OnDidChangeLenses sets a callback fired when the current line moves
func (p *LensProvider) OnDidChangeLenses(fn func()) {
	p.onChange = fn
}

// CurrentLine returns the line lenses are computed for
func (p *LensProvider) CurrentLine() int {
	return p.currentLine
}

func (p *LensProvider) selectionChanged(ed host.Editor) {
	line := ed.Selection().Active.Line
	if line == p.lastLine {
		return
	}
	p.lastLine = line
	p.currentLine = line
	if p.onChange != nil {
		p.onChange()
	}
}

// Provide returns the lenses for the current line. Heading and task tools
// are always offered, block tools only on an empty line.
func (p *LensProvider) Provide(doc host.Document) []Action {
	if !p.enabled {
		return nil
	}
	line := p.currentLine
	text, ok := doc.LineAt(line)
	if !ok {
		return nil
	}

	list := []Action{
		{ID: "heading-up", Title: "H+", Kind: KindLens, Line: line, Command: "heading-up"},
		{ID: "heading-down", Title: "H-", Kind: KindLens, Line: line, Command: "heading-down"},
		{ID: "task-list", Title: "Task List", Kind: KindLens, Line: line, Snippet: edit.TaskTemplate},
	}
	if text != "" {
		return list
	}
	return append(list,
		Action{ID: "image-block", Title: "Image Block", Kind: KindLens, Line: line, Snippet: edit.ImageTemplate},
		Action{ID: "link-block", Title: "Link Block", Kind: KindLens, Line: line, Snippet: edit.LinkTemplate},
		Action{ID: "table-block", Title: "Table Block", Kind: KindLens, Line: line, Snippet: edit.TableTemplate},
		Action{ID: "mermaid-block", Title: "Mermaid Block", Kind: KindLens, Line: line, Snippet: edit.MermaidTemplate},
	)
}
