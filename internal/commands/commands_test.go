package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/mdassist/internal/actions"
	"github.com/gubarz/mdassist/internal/host"
)

type stubConverter struct{}

func (stubConverter) ToDataURI(context.Context, string, string, int) (string, error) {
	return "data:image/png;base64,QQ==", nil
}

func TestMarkdownRegistryIDs(t *testing.T) {
	r := Markdown(Deps{})
	ids := r.IDs()
	for _, id := range []string{
		"bold", "italic", "strike", "math-span", "math-block", "code-span",
		"code-block", "container", "details", "quote", "link", "image", "path",
		"link-ref", "footnote", "delete-link", "heading-up", "heading-down",
		"table", "divider", "newline", "ordered-list", "unordered-list",
		"check-list", "mermaid", "renumber", "to-base64",
	} {
		assert.Contains(t, ids, id)
	}

	cmd, ok := r.Lookup("Markdown: Toggle Bold")
	require.True(t, ok)
	assert.Equal(t, "bold", cmd.ID)
}

func TestMarkdownCommands(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		text     string
		sel      host.Selection
		expected string
	}{
		{
			name:     "bold selection",
			id:       "bold",
			text:     "hello",
			sel:      host.Selection{Anchor: host.Position{}, Active: host.Position{Character: 5}},
			expected: "**hello**",
		},
		{
			name:     "ordered list renumbers",
			id:       "Markdown: Toggle Order List",
			text:     "* a\n* b",
			sel:      host.Selection{Anchor: host.Position{}, Active: host.Position{Line: 1, Character: 1}},
			expected: "1. a\n2. b",
		},
		{
			name:     "check list",
			id:       "check-list",
			text:     "todo",
			expected: "- [ ] todo",
		},
		{
			name:     "heading up",
			id:       "heading-up",
			text:     "title",
			expected: "# title",
		},
		{
			name:     "math block wraps line",
			id:       "math-block",
			text:     "e=mc^2",
			expected: "\n$$\ne=mc^2\n$$",
		},
		{
			name:     "divider after line",
			id:       "divider",
			text:     "text",
			expected: "text\n---\n",
		},
		{
			name:     "renumber",
			id:       "renumber",
			text:     "3. a\n3. b",
			expected: "1. a\n2. b",
		},
		{
			name:     "base64 payload wrapped",
			id:       "to-base64",
			text:     "data:image/png;base64,AAAA",
			expected: "![](data:image/png;base64,AAAA)",
		},
		{
			name:     "image converted",
			id:       "to-base64",
			text:     "![x](a.png)",
			expected: "![x](data:image/png;base64,QQ==)",
		},
		{
			name:     "nothing to convert",
			id:       "to-base64",
			text:     "plain",
			expected: "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Markdown(Deps{QuickFixes: actions.NewQuickFixProvider(stubConverter{}, 0, nil)})
			b := host.NewBuffer("doc.md", tt.text)
			b.SetSelection(tt.sel)
			require.NoError(t, r.Run(context.Background(), tt.id, b))
			assert.Equal(t, tt.expected, b.Text())
		})
	}
}

func TestRegistryRun(t *testing.T) {
	r := NewRegistry(nil)
	boom := errors.New("boom")
	r.Register("fail", "Fail", func(context.Context, host.Editor) error { return boom })

	b := host.NewBuffer("doc.md", "")
	err := r.Run(context.Background(), "fail", b)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fail")

	err = r.Run(context.Background(), "missing", b)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry(nil)
	noop := func(context.Context, host.Editor) error { return nil }
	r.Register("x", "Old Name", noop)
	r.Register("x", "New Name", noop)

	_, ok := r.Lookup("Old Name")
	assert.False(t, ok)
	cmd, ok := r.Lookup("New Name")
	require.True(t, ok)
	assert.Equal(t, "x", cmd.ID)
	assert.Len(t, r.Commands(), 1)
}

func TestRegistryFilter(t *testing.T) {
	r := Markdown(Deps{})

	found := r.Filter("toggle bold")
	require.Len(t, found, 1)
	assert.Equal(t, "bold", found[0].ID)

	assert.Len(t, r.Filter(""), len(r.Commands()))
	assert.Empty(t, r.Filter("no such thing"))
}

func TestInsertPathCommand(t *testing.T) {
	t.Run("picked file", func(t *testing.T) {
		var gotDoc string
		r := Markdown(Deps{PickPath: func(_ context.Context, docPath string) (string, error) {
			gotDoc = docPath
			return "/notes/img/a.png", nil
		}})
		b := host.NewBuffer("/notes/doc.md", "see ")
		b.SetSelection(host.Cursor(0, 4))
		require.NoError(t, r.Run(context.Background(), "Markdown: Insert Path", b))
		assert.Equal(t, "see img/a.png", b.Text())
		assert.Equal(t, "/notes/doc.md", gotDoc)
	})

	t.Run("cancelled", func(t *testing.T) {
		r := Markdown(Deps{PickPath: func(context.Context, string) (string, error) { return "", nil }})
		b := host.NewBuffer("/notes/doc.md", "see ")
		require.NoError(t, r.Run(context.Background(), "path", b))
		assert.Equal(t, "see ", b.Text())
	})

	t.Run("no picker", func(t *testing.T) {
		r := Markdown(Deps{})
		b := host.NewBuffer("/notes/doc.md", "see ")
		err := r.Run(context.Background(), "path", b)
		assert.ErrorIs(t, err, ErrNoPathPicker)
		assert.Equal(t, "see ", b.Text())
	})
}
