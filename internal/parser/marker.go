package parser

import (
	"regexp"
	"strings"
)

// MarkerKind identifies the list marker that starts a line
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerDash
	MarkerStar
	MarkerPlus
	MarkerNumbered
	MarkerNumberedParen
	MarkerTask
)

var (
	taskMarkerRe     = regexp.MustCompile(`(^-\s\[[ xX]?\]\s)`)
	numberedDotRe    = regexp.MustCompile(`^\d+\. `)
	numberedParenRe  = regexp.MustCompile(`^\d+\) `)
	numberedDigitsRe = regexp.MustCompile(`^(\d+)[.)]`)
)

// Text returns the marker inserted when a line is toggled to this kind
func (k MarkerKind) Text() string {
	switch k {
	case MarkerDash:
		return "- "
	case MarkerStar:
		return "* "
	case MarkerPlus:
		return "+ "
	case MarkerNumbered:
		return "1. "
	case MarkerNumberedParen:
		return "1) "
	case MarkerTask:
		return "- [ ] "
	default:
		return ""
	}
}

// String returns a short name for the kind
func (k MarkerKind) String() string {
	switch k {
	case MarkerDash:
		return "dash"
	case MarkerStar:
		return "star"
	case MarkerPlus:
		return "plus"
	case MarkerNumbered:
		return "numbered"
	case MarkerNumberedParen:
		return "numbered-paren"
	case MarkerTask:
		return "task"
	default:
		return "none"
	}
}

// IsSimple reports whether the marker is a single bullet character
func (k MarkerKind) IsSimple() bool {
	return k == MarkerDash || k == MarkerStar || k == MarkerPlus
}

// Classify returns the marker kind of content that starts at the first
// non-whitespace character of a line. Task is tested first because it
// also starts with a dash.
func Classify(content string) MarkerKind {
	switch {
	case taskMarkerRe.MatchString(content):
		return MarkerTask
	case strings.HasPrefix(content, "- "):
		return MarkerDash
	case strings.HasPrefix(content, "* "):
		return MarkerStar
	case strings.HasPrefix(content, "+ "):
		return MarkerPlus
	case numberedDotRe.MatchString(content):
		return MarkerNumbered
	case numberedParenRe.MatchString(content):
		return MarkerNumberedParen
	default:
		return MarkerNone
	}
}

// ClassifyLine classifies a full line, skipping its indentation
func ClassifyLine(line string) MarkerKind {
	return Classify(line[Indentation(line):])
}

// MarkerEnd returns the column where the marker of the given kind ends.
//
// Task markers report the length of the task match on the trimmed line
// without adding the indentation, so an indented task line yields a column
// before its marker.
func MarkerEnd(kind MarkerKind, line string) int {
	indent := Indentation(line)
	content := line[indent:]
	trimmed := strings.TrimSpace(line)

	end := indent
	switch {
	case kind.IsSimple():
		end += 2
	case numberedDotRe.MatchString(content), numberedParenRe.MatchString(content):
		digits := numberedDigitsRe.FindStringSubmatch(trimmed)[1]
		end += len(digits) + 2
	case taskMarkerRe.MatchString(content):
		m := taskMarkerRe.FindStringSubmatch(trimmed)
		if m == nil {
			// a marker-only line loses its trailing space to the trim
			m = taskMarkerRe.FindStringSubmatch(content)
		}
		end = len(m[1])
	}
	return end
}

// ParseMarkerName maps a configured marker such as "-" or "1." to its kind.
// A trailing space is appended before matching, like the candidate list in
// settings.
func ParseMarkerName(name string) MarkerKind {
	marker := strings.TrimSpace(name) + " "
	switch marker {
	case "- ":
		return MarkerDash
	case "* ":
		return MarkerStar
	case "+ ":
		return MarkerPlus
	case "1. ":
		return MarkerNumbered
	case "1) ":
		return MarkerNumberedParen
	}
	if taskMarkerRe.MatchString(marker) {
		return MarkerTask
	}
	return MarkerNone
}
