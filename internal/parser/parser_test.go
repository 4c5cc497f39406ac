package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected MarkerKind
	}{
		{name: "empty", content: "", expected: MarkerNone},
		{name: "plain text", content: "hello", expected: MarkerNone},
		{name: "dash", content: "- item", expected: MarkerDash},
		{name: "star", content: "* item", expected: MarkerStar},
		{name: "plus", content: "+ item", expected: MarkerPlus},
		{name: "numbered dot", content: "12. item", expected: MarkerNumbered},
		{name: "numbered paren", content: "3) item", expected: MarkerNumberedParen},
		{name: "task unchecked", content: "- [ ] todo", expected: MarkerTask},
		{name: "task checked", content: "- [x] done", expected: MarkerTask},
		{name: "task upper checked", content: "- [X] done", expected: MarkerTask},
		{name: "task without state", content: "- [] todo", expected: MarkerTask},
		{name: "dash without space", content: "-item", expected: MarkerNone},
		{name: "number without space", content: "1.item", expected: MarkerNone},
		{name: "link is not a task", content: "- [link](x)", expected: MarkerDash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.content))
		})
	}
}

func TestClassifyLineSkipsIndentation(t *testing.T) {
	assert.Equal(t, MarkerNumbered, ClassifyLine("    2. nested"))
	assert.Equal(t, MarkerTask, ClassifyLine("\t- [ ] nested"))
	assert.Equal(t, MarkerNone, ClassifyLine("   "))
}

func TestMarkerEnd(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected int
	}{
		{name: "dash", line: "- a", expected: 2},
		{name: "indented star", line: "  * a", expected: 4},
		{name: "numbered", line: "1. a", expected: 3},
		{name: "two digit numbered", line: "  10. a", expected: 6},
		{name: "numbered paren", line: "7) a", expected: 3},
		{name: "task", line: "- [ ] a", expected: 6},
		// task end ignores indentation
		{name: "indented task", line: "    - [x] a", expected: 6},
		{name: "task marker only", line: "- [ ] ", expected: 6},
		{name: "indented checked task marker only", line: "  - [x] ", expected: 6},
		{name: "no marker", line: "  text", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := ClassifyLine(tt.line)
			assert.Equal(t, tt.expected, MarkerEnd(kind, tt.line))
		})
	}
}

func TestParseMarkerName(t *testing.T) {
	assert.Equal(t, MarkerDash, ParseMarkerName("-"))
	assert.Equal(t, MarkerStar, ParseMarkerName("*"))
	assert.Equal(t, MarkerPlus, ParseMarkerName("+"))
	assert.Equal(t, MarkerNumbered, ParseMarkerName("1."))
	assert.Equal(t, MarkerNumberedParen, ParseMarkerName("1)"))
	assert.Equal(t, MarkerTask, ParseMarkerName("- [ ]"))
	assert.Equal(t, MarkerNone, ParseMarkerName("2."))
	assert.Equal(t, MarkerNone, ParseMarkerName("x"))
}

func TestParseOrderedItem(t *testing.T) {
	item, ok := ParseOrderedItem("\t12)   text")
	require.True(t, ok)
	assert.Equal(t, "\t", item.LeadingSpace)
	assert.Equal(t, "12", item.Number)
	assert.Equal(t, ")", item.Delimiter)
	assert.Equal(t, "   ", item.TrailingSpace)
	assert.Equal(t, 4, item.Indent())
	assert.Equal(t, 6, item.MarkerWidth())

	_, ok = ParseOrderedItem("- not ordered")
	assert.False(t, ok)
	_, ok = ParseOrderedItem("1.no space")
	assert.False(t, ok)
}

func TestIndentHelpers(t *testing.T) {
	indent, ok := UnorderedIndent("   - x")
	assert.True(t, ok)
	assert.Equal(t, 3, indent)

	_, ok = UnorderedIndent("1. x")
	assert.False(t, ok)

	indent, ok = TextIndent("  para")
	assert.True(t, ok)
	assert.Equal(t, 2, indent)

	_, ok = TextIndent("   ")
	assert.False(t, ok)

	assert.Equal(t, 0, Indentation("abc"))
	assert.Equal(t, 3, Indentation("   "))
	assert.Equal(t, "        x", ExpandTabs("\t\tx"))
	assert.True(t, IsHeading("## title"))
	assert.False(t, IsHeading(" # title"))
}

func TestImageFromLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		match bool
		alt   string
		url   string
	}{
		{name: "relative image", line: "![alt](./img.png)", match: true, alt: "alt", url: "./img.png"},
		{name: "empty alt", line: "![](pic.jpg)", match: true, alt: "", url: "pic.jpg"},
		{name: "title unsupported", line: `![alt](./img.png "title")`, match: false},
		{name: "trailing text", line: "![alt](./img.png) more", match: false},
		{name: "leading space", line: " ![alt](./img.png)", match: false},
		{name: "reference style", line: "![alt][ref]", match: false},
		{name: "link", line: "[alt](./img.png)", match: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, ok := ImageFromLine(tt.line)
			assert.Equal(t, tt.match, ok)
			if tt.match {
				assert.Equal(t, tt.alt, img.Alt)
				assert.Equal(t, tt.url, img.URL)
			}
		})
	}
}

func TestIsBase64Payload(t *testing.T) {
	assert.True(t, IsBase64Payload("data:image/png;base64,AAAA"))
	assert.True(t, IsBase64Payload("data:image/*;base64,/9j/4AAQ"))
	assert.False(t, IsBase64Payload("[data:image/png;base64,AAAA"))
	assert.False(t, IsBase64Payload("![](data:image/png;base64,AAAA)"))
	assert.False(t, IsBase64Payload("plain text"))
	assert.False(t, IsBase64Payload("data:text/plain;base64,AAAA"))
}

func TestSplitJoin(t *testing.T) {
	src := Split("a\r\nb\r\n")
	assert.Equal(t, []string{"a", "b", ""}, src.Lines)
	assert.Equal(t, "\r\n", src.EOL)
	assert.Equal(t, "a\r\nb\r\n", src.Join())

	src = Split("")
	assert.Equal(t, []string{""}, src.Lines)
	assert.Equal(t, "", src.Join())
}

func TestReadSourceLongLine(t *testing.T) {
	long := "data:image/png;base64," + strings.Repeat("A", 200*1024)
	src, err := ReadSource(strings.NewReader("# t\n" + long + "\n"))
	require.NoError(t, err)
	require.Len(t, src.Lines, 3)
	assert.Equal(t, long, src.Lines[1])
}
