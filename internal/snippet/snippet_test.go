package snippet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		snippet  string
		vars     map[string]string
		text     string
		cursorLo int
		cursorHi int
	}{
		{
			name:     "image placeholders",
			snippet:  "![${1:title}](${2:image.png})",
			text:     "![title](image.png)",
			cursorLo: 2,
			cursorHi: 7,
		},
		{
			name:     "task choice",
			snippet:  "- [${1| ,x|}] ${2:text}",
			text:     "- [ ] text",
			cursorLo: 3,
			cursorHi: 4,
		},
		{
			name:     "code block with selection",
			snippet:  "\n```${1:language}\n$TM_SELECTED_TEXT$0\n```",
			vars:     map[string]string{SelectedText: "x=1"},
			text:     "\n```language\nx=1\n```",
			cursorLo: 4,
			cursorHi: 12,
		},
		{
			name:     "math block dollars",
			snippet:  "\n$$\n$TM_SELECTED_TEXT$0\n$$",
			vars:     map[string]string{SelectedText: "e=mc^2"},
			text:     "\n$$\ne=mc^2\n$$",
			cursorLo: 10,
			cursorHi: 10,
		},
		{
			name:     "nested placeholders",
			snippet:  "${1:outer ${2:inner}}",
			text:     "outer inner",
			cursorLo: 0,
			cursorHi: 11,
		},
		{
			name:     "escaped dollar",
			snippet:  `cost \$5$0`,
			text:     "cost $5",
			cursorLo: 7,
			cursorHi: 7,
		},
		{
			name:     "variable default used",
			snippet:  "${TM_SELECTED_TEXT:none}",
			text:     "none",
			cursorLo: 4,
			cursorHi: 4,
		},
		{
			name:     "variable default replaced",
			snippet:  "${TM_SELECTED_TEXT:${1:none}}",
			vars:     map[string]string{SelectedText: "abc"},
			text:     "abc",
			cursorLo: 3,
			cursorHi: 3,
		},
		{
			name:     "plain text",
			snippet:  "---",
			text:     "---",
			cursorLo: 3,
			cursorHi: 3,
		},
		{
			name:     "malformed brace stays literal",
			snippet:  "${",
			text:     "${",
			cursorLo: 2,
			cursorHi: 2,
		},
		{
			name:     "unclosed placeholder stays literal",
			snippet:  "${1:",
			text:     "${1:",
			cursorLo: 4,
			cursorHi: 4,
		},
		{
			name:     "unclosed choice stays literal",
			snippet:  "${1|a,b",
			text:     "${1|a,b",
			cursorLo: 7,
			cursorHi: 7,
		},
		{
			name:     "unclosed variable default stays literal",
			snippet:  "${TM_SELECTED_TEXT:abc",
			text:     "${TM_SELECTED_TEXT:abc",
			cursorLo: 22,
			cursorHi: 22,
		},
		{
			name:     "closed placeholder inside unclosed one",
			snippet:  "a${1:${2:x}",
			text:     "a${1:x",
			cursorLo: 5,
			cursorHi: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Expand(tt.snippet, tt.vars)
			assert.Equal(t, tt.text, result.Text)
			lo, hi := result.Cursor()
			assert.Equal(t, tt.cursorLo, lo, "cursor start")
			assert.Equal(t, tt.cursorHi, hi, "cursor end")
		})
	}
}

func TestExpandTabStopOrder(t *testing.T) {
	result := Expand("$0 ${2:b} ${1:a}", nil)
	if assert.Len(t, result.TabStops, 3) {
		assert.Equal(t, 1, result.TabStops[0].Index)
		assert.Equal(t, 2, result.TabStops[1].Index)
		assert.Equal(t, 0, result.TabStops[2].Index)
	}
}

func TestEscape(t *testing.T) {
	raw := `price $5 {x}\`
	result := Expand("${1:"+Escape(raw)+"}", nil)
	assert.Equal(t, raw, result.Text)
}
