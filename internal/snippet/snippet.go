// Package snippet expands editor snippets such as "![${1:alt}](${2:url})"
// into plain text with the positions of their tab stops.
package snippet

import (
	"bytes"
	"sort"
	"strings"
)

// SelectedText is the variable holding the text the snippet replaces
const SelectedText = "TM_SELECTED_TEXT"

// TabStop is the byte span a numbered placeholder expanded to
type TabStop struct {
	Index int
	Start int
	End   int
}

// Result is an expanded snippet
type Result struct {
	Text     string
	TabStops []TabStop // Sorted by index, $0 last
}

// Cursor returns the span to select after insertion: the first numbered tab
// stop, else the final $0 stop, else the end of the text.
func (r Result) Cursor() (start, end int) {
	var final *TabStop
	for i := range r.TabStops {
		ts := r.TabStops[i]
		if ts.Index == 0 {
			final = &r.TabStops[i]
			continue
		}
		return ts.Start, ts.End
	}
	if final != nil {
		return final.Start, final.Start
	}
	return len(r.Text), len(r.Text)
}

// Expand resolves placeholders, choices and variables. Unknown variables
// expand to their default or to nothing.
func Expand(snippet string, vars map[string]string) Result {
	e := &expander{
		src:   snippet,
		vars:  vars,
		stops: make(map[int]TabStop),
	}
	e.run(false)

	stops := make([]TabStop, 0, len(e.stops))
	for _, ts := range e.stops {
		stops = append(stops, ts)
	}
	sort.Slice(stops, func(i, j int) bool {
		a, b := stops[i].Index, stops[j].Index
		if a == 0 || b == 0 {
			return b == 0 && a != 0
		}
		return a < b
	})
	return Result{Text: e.out.String(), TabStops: stops}
}

// Escape makes text safe to embed literally in a snippet
func Escape(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)
	return r.Replace(text)
}

type expander struct {
	src   string
	pos   int
	out   bytes.Buffer
	vars  map[string]string
	stops map[int]TabStop
}

// run copies text until the end of input, or until an unescaped `}` when
// nested is set. The closing brace is left for the caller.
func (e *expander) run(nested bool) {
	for e.pos < len(e.src) {
		c := e.src[e.pos]
		switch {
		case c == '\\' && e.pos+1 < len(e.src) && strings.IndexByte(`$}\`, e.src[e.pos+1]) >= 0:
			e.out.WriteByte(e.src[e.pos+1])
			e.pos += 2
		case c == '}' && nested:
			return
		case c == '$':
			e.dollar()
		default:
			e.out.WriteByte(c)
			e.pos++
		}
	}
}

func (e *expander) dollar() {
	e.pos++
	if e.pos >= len(e.src) {
		e.out.WriteByte('$')
		return
	}
	c := e.src[e.pos]
	switch {
	case isDigit(c):
		n := e.readInt()
		e.mark(n, e.out.Len(), e.out.Len())
	case c == '{':
		e.braced()
	case isNameStart(c):
		name := e.readName()
		e.out.WriteString(e.vars[name])
	default:
		e.out.WriteByte('$')
	}
}

func (e *expander) braced() {
	open := e.pos
	before := e.out.Len()
	e.pos++
	if e.pos >= len(e.src) {
		e.literal(open)
		return
	}

	c := e.src[e.pos]
	switch {
	case isDigit(c):
		n := e.readInt()
		if e.pos >= len(e.src) {
			e.literal(open)
			return
		}
		switch e.src[e.pos] {
		case '}':
			e.pos++
			e.mark(n, e.out.Len(), e.out.Len())
			return
		case ':':
			e.pos++
			begin := e.out.Len()
			e.run(true)
			if !e.skipClose() {
				e.rollback(before, open)
				return
			}
			e.mark(n, begin, e.out.Len())
			return
		case '|':
			e.pos++
			end := strings.Index(e.src[e.pos:], "|}")
			if end < 0 {
				e.literal(open)
				return
			}
			choices := splitChoices(e.src[e.pos : e.pos+end])
			begin := e.out.Len()
			if len(choices) > 0 {
				e.out.WriteString(choices[0])
			}
			e.pos += end + 2
			e.mark(n, begin, e.out.Len())
			return
		}
	case isNameStart(c):
		name := e.readName()
		if e.pos >= len(e.src) {
			e.literal(open)
			return
		}
		switch e.src[e.pos] {
		case '}':
			e.pos++
			e.out.WriteString(e.vars[name])
			return
		case ':':
			e.pos++
			begin := e.out.Len()
			e.run(true)
			if !e.skipClose() {
				e.rollback(before, open)
				return
			}
			if value := e.vars[name]; value != "" {
				e.out.Truncate(begin)
				e.dropStops(begin)
				e.out.WriteString(value)
			}
			return
		}
	}
	e.literal(open)
}

// literal writes a malformed `${` as text and resumes after the brace
func (e *expander) literal(open int) {
	e.out.WriteString("${")
	e.pos = open + 1
}

// skipClose consumes the closing brace of a placeholder and reports
// whether there was one
func (e *expander) skipClose() bool {
	if e.pos < len(e.src) && e.src[e.pos] == '}' {
		e.pos++
		return true
	}
	return false
}

// rollback discards the output of an unclosed placeholder and writes its
// opening as text
func (e *expander) rollback(before, open int) {
	e.out.Truncate(before)
	e.dropStops(before)
	e.literal(open)
}

// mark records the first occurrence of a tab stop
func (e *expander) mark(index, start, end int) {
	if _, ok := e.stops[index]; ok {
		return
	}
	e.stops[index] = TabStop{Index: index, Start: start, End: end}
}

func (e *expander) dropStops(from int) {
	for idx, ts := range e.stops {
		if ts.Start >= from {
			delete(e.stops, idx)
		}
	}
}

func (e *expander) readInt() int {
	n := 0
	for e.pos < len(e.src) && isDigit(e.src[e.pos]) {
		n = n*10 + int(e.src[e.pos]-'0')
		e.pos++
	}
	return n
}

func (e *expander) readName() string {
	start := e.pos
	for e.pos < len(e.src) && (isNameStart(e.src[e.pos]) || isDigit(e.src[e.pos])) {
		e.pos++
	}
	return e.src[start:e.pos]
}

func splitChoices(s string) []string {
	var choices []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && strings.IndexByte(`,|\`, s[i+1]) >= 0 {
			cur.WriteByte(s[i+1])
			i++
			continue
		}
		if c == ',' {
			choices = append(choices, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	return append(choices, cur.String())
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
