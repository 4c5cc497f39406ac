package actions

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gubarz/mdassist/internal/edit"
	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/parser"
)

// Converter produces a data URI for an image url found in a document
type Converter interface {
	ToDataURI(ctx context.Context, url, docPath string, width int) (string, error)
}

// insertFix is a snippet offered on a blank line or on its trigger word
type insertFix struct {
	id      string
	title   string
	trigger string
	snippet string
}

var insertFixes = []insertFix{
	{id: "insert-image", title: "Insert Image Block", trigger: "image", snippet: edit.ImageTemplate},
	{id: "insert-link", title: "Insert Link Block", trigger: "link", snippet: edit.LinkTemplate},
	{id: "insert-table", title: "Insert Table", trigger: "table", snippet: edit.TableTemplate},
	{id: "insert-task", title: "Insert Task", trigger: "task", snippet: edit.TaskTemplate},
	{id: "insert-mermaid", title: "Insert Mermaid", trigger: "mermaid", snippet: edit.MermaidTemplate},
}

// QuickFixProvider computes the quick fixes for a line
type QuickFixProvider struct {
	converter Converter
	width     int
	logger    *zap.Logger
}

// NewQuickFixProvider creates a provider converting images to width pixels.
// A nil converter disables image conversion.
func NewQuickFixProvider(converter Converter, width int, logger *zap.Logger) *QuickFixProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuickFixProvider{converter: converter, width: width, logger: logger}
}

// Provide returns the quick fixes for the start line of rng. Base64 payload
// wrapping comes first, then image conversion, then the insert snippets.
// Failures only drop the affected fix.
func (p *QuickFixProvider) Provide(ctx context.Context, doc host.Document, rng host.Range) []Action {
	line := rng.Start.Line
	text, ok := doc.LineAt(line)
	if !ok {
		return nil
	}

	var list []Action
	if a, ok := p.wrapBase64(line, text); ok {
		list = append(list, a)
	}
	if a, ok := p.convertImage(ctx, doc, line, text); ok {
		list = append(list, a)
	}
	for _, fix := range insertFixes {
		if strings.TrimSpace(text) != "" && text != fix.trigger {
			continue
		}
		list = append(list, Action{
			ID:      fix.id,
			Title:   fix.title,
			Kind:    KindQuickFix,
			Line:    line,
			Edits:   clearLine(line, text),
			Snippet: fix.snippet,
		})
	}
	return list
}

func (p *QuickFixProvider) wrapBase64(line int, text string) (Action, bool) {
	if !parser.IsBase64Payload(text) {
		return Action{}, false
	}
	img := parser.Image{URL: text}
	return Action{
		ID:        "convert-image-block",
		Title:     "Convert Image Block",
		Kind:      KindQuickFix,
		Preferred: true,
		Line:      line,
		Edits:     []host.TextEdit{host.Replace(host.LineRange(line, len(text)), img.Markdown())},
	}, true
}

func (p *QuickFixProvider) convertImage(ctx context.Context, doc host.Document, line int, text string) (Action, bool) {
	if text == "" || p.converter == nil {
		return Action{}, false
	}
	img, ok := parser.ImageFromLine(text)
	if !ok || img.IsDataURI() {
		return Action{}, false
	}

	uri, err := p.converter.ToDataURI(ctx, img.URL, doc.Path(), p.width)
	if err != nil {
		p.logger.Debug("no image conversion",
			zap.Int("line", line),
			zap.String("url", img.URL),
			zap.Error(err))
		return Action{}, false
	}
	img.URL = uri
	return Action{
		ID:        "convert-image-path",
		Title:     "Convert Image Path To Base64",
		Kind:      KindQuickFix,
		Preferred: true,
		Line:      line,
		Edits:     []host.TextEdit{host.Replace(host.LineRange(line, len(text)), img.Markdown())},
	}, true
}
