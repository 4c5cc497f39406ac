package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/mdassist/internal/config"
)

const sample = `---
mdassist:
  resize_width: 300
  line_tools: true
---
# Pics

![logo](./logo.png)

Inline ![icon](icon.svg "Icon") here.

![](data:image/png;base64,AAAA)
`

func TestFrontMatter(t *testing.T) {
	o, err := FrontMatter([]byte(sample))
	require.NoError(t, err)
	require.NotNil(t, o.ResizeWidth)
	require.NotNil(t, o.LineTools)
	assert.Equal(t, 300, *o.ResizeWidth)
	assert.True(t, *o.LineTools)
	assert.Nil(t, o.AutoRenumber)
	assert.Nil(t, o.ListMarker)
	assert.False(t, o.IsZero())
}

func TestFrontMatterMissing(t *testing.T) {
	o, err := FrontMatter([]byte("# Title\n\n1. a\n"))
	require.NoError(t, err)
	assert.True(t, o.IsZero())
}

func TestFrontMatterMalformed(t *testing.T) {
	_, err := FrontMatter([]byte("---\nmdassist: [\n---\n"))
	assert.Error(t, err)
}

func TestOverridesApply(t *testing.T) {
	width := 120
	marker := "one"
	base := config.Settings{ResizeWidth: 0, LineTools: true, AutoRenumber: true, ListMarker: "ordered"}

	tests := []struct {
		name     string
		o        Overrides
		expected config.Settings
	}{
		{name: "none", o: Overrides{}, expected: base},
		{
			name:     "width and marker",
			o:        Overrides{ResizeWidth: &width, ListMarker: &marker},
			expected: config.Settings{ResizeWidth: 120, LineTools: true, AutoRenumber: true, ListMarker: "one"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.o.Apply(base))
		})
	}
}

func TestImages(t *testing.T) {
	refs := Images([]byte(sample))
	assert.Equal(t, []ImageRef{
		{Line: 7, Alt: "logo", URL: "./logo.png", Convertible: true},
		{Line: 9, Alt: "icon", URL: "icon.svg", Title: "Icon"},
		{Line: 11, URL: "data:image/png;base64,AAAA", Embedded: true},
	}, refs)
}

func TestImagesNone(t *testing.T) {
	assert.Empty(t, Images([]byte("plain text\n\n[link](a.md)\n")))
}

func TestImagesInList(t *testing.T) {
	refs := Images([]byte("1. first\n2. ![shot](shot.jpg)\n"))
	require.Len(t, refs, 1)
	assert.Equal(t, 1, refs[0].Line)
	assert.False(t, refs[0].Convertible)
}
