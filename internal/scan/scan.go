// Package scan inspects whole markdown documents: per-document settings in
// front matter and the images the document references.
package scan

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/gubarz/mdassist/internal/config"
	"github.com/gubarz/mdassist/internal/parser"
)

// ============================================================================
// Front matter
// ============================================================================

// Overrides are the settings a document may change for itself. Nil fields
// keep the configured value.
type Overrides struct {
	ResizeWidth  *int    `yaml:"resize_width"`
	LineTools    *bool   `yaml:"line_tools"`
	AutoRenumber *bool   `yaml:"auto_renumber"`
	ListMarker   *string `yaml:"list_marker"`
}

type frontMatterEnvelope struct {
	MDAssist Overrides `yaml:"mdassist"`
}

// FrontMatter reads the mdassist block of the document's front matter.
// A document without front matter yields empty overrides.
func FrontMatter(source []byte) (Overrides, error) {
	var meta frontMatterEnvelope
	if _, err := frontmatter.Parse(bytes.NewReader(source), &meta); err != nil {
		return Overrides{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta.MDAssist, nil
}

// IsZero reports whether no setting is overridden
func (o Overrides) IsZero() bool {
	return o.ResizeWidth == nil && o.LineTools == nil && o.AutoRenumber == nil && o.ListMarker == nil
}

// Apply returns s with the overridden fields replaced
func (o Overrides) Apply(s config.Settings) config.Settings {
	if o.ResizeWidth != nil {
		s.ResizeWidth = *o.ResizeWidth
	}
	if o.LineTools != nil {
		s.LineTools = *o.LineTools
	}
	if o.AutoRenumber != nil {
		s.AutoRenumber = *o.AutoRenumber
	}
	if o.ListMarker != nil {
		s.ListMarker = *o.ListMarker
	}
	return s
}

// ============================================================================
// Images
// ============================================================================

// ImageRef is an image referenced by the document
type ImageRef struct {
	Line        int    `json:"line"`  // Zero-based line of the image
	Alt         string `json:"alt"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Convertible bool   `json:"convertible"` // The line alone is an image the converter can embed
	Embedded    bool   `json:"embedded"`    // Already a data URI
}

// Images lists every image in source in document order
func Images(source []byte) []ImageRef {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	starts := lineStarts(source)

	var refs []ImageRef
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		url := string(img.Destination)
		ref := ImageRef{
			Line:     lineOf(starts, imageOffset(img, source)),
			Alt:      string(img.Text(source)),
			URL:      url,
			Title:    string(img.Title),
			Embedded: strings.HasPrefix(url, "data:"),
		}
		if ref.Line >= 0 {
			line := lineText(source, starts, ref.Line)
			if parsed, ok := parser.ImageFromLine(line); ok && !parsed.IsDataURI() {
				ref.Convertible = true
			}
		}
		refs = append(refs, ref)
		return ast.WalkSkipChildren, nil
	})
	return refs
}

// imageOffset returns a byte offset inside the image, or -1
func imageOffset(img *ast.Image, source []byte) int {
	for c := img.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t.Segment.Start
		}
	}
	// Empty alt text: search the enclosing block for the destination
	for p := img.Parent(); p != nil; p = p.Parent() {
		if p.Type() != ast.TypeBlock || p.Lines().Len() == 0 {
			continue
		}
		start := p.Lines().At(0).Start
		if i := bytes.Index(source[start:], img.Destination); i >= 0 {
			return start + i
		}
		return start
	}
	return -1
}

func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineOf(starts []int, offset int) int {
	if offset < 0 {
		return -1
	}
	line := 0
	for i, s := range starts {
		if s > offset {
			break
		}
		line = i
	}
	return line
}

func lineText(source []byte, starts []int, line int) string {
	end := len(source)
	if line+1 < len(starts) {
		end = starts[line+1]
	}
	return strings.TrimRight(string(source[starts[line]:end]), "\r\n")
}
