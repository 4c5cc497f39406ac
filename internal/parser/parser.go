package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// TabWidth is the number of columns a tab counts for in indentation comparisons
const TabWidth = 4

var (
	orderedItemRe   = regexp.MustCompile(`^(\s*)([0-9]+)([.)])( +)`)
	orderedPrefixRe = regexp.MustCompile(`^\s*[0-9]+[.)] +`)
	unorderedItemRe = regexp.MustCompile(`^(\s*)([-+*] +)`)
	textLineRe      = regexp.MustCompile(`^(\s*)\S`)
)

// OrderedItem is the decomposed marker of an ordered list line
type OrderedItem struct {
	LeadingSpace  string // Whitespace before the number, tabs untouched
	Number        string // Digits as written
	Delimiter     string // "." or ")"
	TrailingSpace string // Spaces between delimiter and content
}

// Indent returns the width of the leading whitespace with tabs expanded
func (o OrderedItem) Indent() int {
	return len(ExpandTabs(o.LeadingSpace))
}

// MarkerWidth is the width of number, delimiter and trailing spaces
func (o OrderedItem) MarkerWidth() int {
	return len(o.Number) + len(o.Delimiter) + len(o.TrailingSpace)
}

// ParseOrderedItem extracts the ordered list marker of a line
func ParseOrderedItem(line string) (OrderedItem, bool) {
	m := orderedItemRe.FindStringSubmatch(line)
	if m == nil {
		return OrderedItem{}, false
	}
	return OrderedItem{
		LeadingSpace:  m[1],
		Number:        m[2],
		Delimiter:     m[3],
		TrailingSpace: m[4],
	}, true
}

// IsOrderedItem reports whether the line starts with a numbered marker
func IsOrderedItem(line string) bool {
	return orderedPrefixRe.MatchString(line)
}

// UnorderedIndent returns the leading whitespace width of a `-`, `+` or `*`
// list line. ok is false for any other line.
func UnorderedIndent(line string) (indent int, ok bool) {
	m := unorderedItemRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return len(m[1]), true
}

// TextIndent returns the leading whitespace width of a non-blank line
func TextIndent(line string) (indent int, ok bool) {
	m := textLineRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return len(m[1]), true
}

// IsHeading reports whether the line is an ATX heading
func IsHeading(line string) bool {
	return strings.HasPrefix(line, "#")
}

// IsBlank reports whether the line is empty or whitespace only
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// ExpandTabs replaces each tab with TabWidth spaces
func ExpandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", TabWidth))
}

// Indentation returns the offset of the first non-whitespace character.
// Blank lines report their full length.
func Indentation(line string) int {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return len(line)
	}
	return strings.Index(line, trimmed)
}

// ============================================================================
// Source splitting
// ============================================================================

// Source is a document split into lines along with its line ending
type Source struct {
	Lines []string
	EOL   string
}

// Split breaks text into lines. A document always has at least one line and
// a trailing newline yields a final empty line, like an editor buffer.
func Split(text string) Source {
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	return Source{
		Lines: strings.Split(text, "\n"),
		EOL:   eol,
	}
}

// ReadSource reads a whole document from r and splits it
func ReadSource(r io.Reader) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{}, fmt.Errorf("read source: %w", err)
	}
	return Split(string(data)), nil
}

// Join reassembles the source using its line ending
func (s Source) Join() string {
	eol := s.EOL
	if eol == "" {
		eol = "\n"
	}
	return strings.Join(s.Lines, eol)
}
