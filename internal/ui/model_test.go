package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/mdassist/internal/actions"
	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/lists"
)

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m editorModel, msg tea.Msg) (editorModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	result, ok := next.(editorModel)
	require.True(t, ok)
	return result, cmd
}

func newTestModel(text string, deps Deps) editorModel {
	m := newEditorModel(context.Background(), host.NewBuffer("/notes/doc.md", text), deps)
	m.width, m.height = 80, 24
	return m
}

func TestCursorMovement(t *testing.T) {
	tests := []struct {
		name     string
		keys     []tea.Msg
		expected host.Selection
	}{
		{
			name:     "down and right",
			keys:     []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyRight}},
			expected: host.Cursor(1, 1),
		},
		{
			name:     "goal column kept across short line",
			keys:     []tea.Msg{keys("$"), keys("j"), keys("j")},
			expected: host.Cursor(2, 3),
		},
		{
			name:     "right wraps to next line",
			keys:     []tea.Msg{keys("$"), keys("l")},
			expected: host.Cursor(1, 0),
		},
		{
			name:     "left stops at start",
			keys:     []tea.Msg{tea.KeyMsg{Type: tea.KeyLeft}},
			expected: host.Cursor(0, 0),
		},
		{
			name: "shift extends selection",
			keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyShiftDown}},
			expected: host.Selection{
				Anchor: host.Position{},
				Active: host.Position{Line: 1},
			},
		},
		{
			name:     "bottom",
			keys:     []tea.Msg{keys("G")},
			expected: host.Cursor(2, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel("abcd\nb\nxyz", Deps{})
			for _, k := range tt.keys {
				m, _ = press(t, m, k)
			}
			assert.Equal(t, tt.expected, m.buf.Selection())
		})
	}
}

func TestLensesFollowCursor(t *testing.T) {
	m := newTestModel("text\n", Deps{Lenses: actions.NewLensProvider(true)})

	assert.Contains(t, m.View(), "H+ | H- | Task List")
	assert.NotContains(t, m.View(), "Image Block")

	m, _ = press(t, m, keys("j"))
	assert.Equal(t, 1, m.deps.Lenses.CurrentLine())
	assert.Contains(t, m.View(), "Image Block")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, modeLenses, m.mode)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "text\n- [ ] text", m.buf.Text())
}

func TestLensesOff(t *testing.T) {
	m := newTestModel("text", Deps{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeEdit, m.mode)
	assert.Contains(t, m.status, "line_tools")
}

func TestQuickFixMenu(t *testing.T) {
	m := newTestModel("intro\ntable", Deps{})
	m, _ = press(t, m, keys("j"))

	m, cmd := press(t, m, keys("."))
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	// Keys are ignored while fixes load
	m, _ = press(t, m, keys("k"))
	assert.Equal(t, 1, m.buf.Selection().Active.Line)

	m, _ = press(t, m, cmd())
	assert.False(t, m.busy)
	require.Equal(t, modeFixes, m.mode)
	require.Len(t, m.menu, 1)
	assert.Equal(t, "Insert Table", m.menu[0].Title)
	assert.Contains(t, m.View(), "> Insert Table")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeEdit, m.mode)
	assert.Contains(t, m.buf.Text(), "| Column1 | Column2 | Column3 |")
	assert.True(t, m.buf.Dirty())
}

func TestQuickFixNone(t *testing.T) {
	m := newTestModel("some words", Deps{})
	m, cmd := press(t, m, keys("."))
	m, _ = press(t, m, cmd())
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "No quick fixes on line 1", m.status)
}

func TestQuickFixSizeNote(t *testing.T) {
	a := actions.Action{Edits: []host.TextEdit{{NewText: "![](data:image/png;base64,QUJD)"}}}
	assert.Equal(t, " (31 B)", sizeNote(a))
	assert.Empty(t, sizeNote(actions.Action{}))
}

func TestPalette(t *testing.T) {
	m := newTestModel("say hello", Deps{})
	m.buf.SetSelection(host.Cursor(0, 6))

	m, _ = press(t, m, keys(":"))
	require.Equal(t, modePalette, m.mode)
	assert.Len(t, m.matches, len(m.deps.Registry.Commands()))

	m, _ = press(t, m, keys("toggle bold"))
	require.Len(t, m.matches, 1)
	assert.Equal(t, "bold", m.matches[0].ID)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = press(t, m, cmd())

	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "say **hello**", m.buf.Text())
	assert.Equal(t, host.Cursor(0, 8), m.buf.Selection())
	assert.Equal(t, "Markdown: Toggle Bold", m.status)
}

func TestPaletteEscape(t *testing.T) {
	m := newTestModel("x", Deps{})
	m, _ = press(t, m, keys(":"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "x", m.buf.Text())
}

func TestPaletteInsertPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "relative", input: "img/a.png", expected: "see img/a.png"},
		{name: "absolute", input: "/notes/sub/b.md", expected: "see sub/b.md"},
		{name: "parent", input: "/other/c.md", expected: "see ../other/c.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel("see ", Deps{})
			m.buf.SetSelection(host.Cursor(0, 4))

			m, _ = press(t, m, keys(":"))
			m, _ = press(t, m, keys("insert path"))
			require.Len(t, m.matches, 1)
			m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			assert.Nil(t, cmd)
			require.Equal(t, modePath, m.mode)

			m, _ = press(t, m, keys(tt.input))
			m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			assert.Equal(t, modeEdit, m.mode)
			assert.Equal(t, tt.expected, m.buf.Text())
			assert.Equal(t, "Markdown: Insert Path", m.status)
		})
	}
}

func TestPathPromptEscape(t *testing.T) {
	m := newTestModel("see ", Deps{})
	m, _ = press(t, m, keys(":"))
	m, _ = press(t, m, keys("insert path"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, keys("a.md"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "see ", m.buf.Text())
}

func TestRenumberAfterEdit(t *testing.T) {
	m := newTestModel("intro\n2. a\n2. b", Deps{Renumberer: lists.NewRenumberer(lists.DefaultSettings(), nil)})
	m.buf.SetSelection(host.Cursor(1, 3))
	m, _ = press(t, m, keys(":"))
	m, _ = press(t, m, keys("toggle bold"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, cmd())
	assert.Equal(t, "intro\n1. **a**\n2. b", m.buf.Text())
}

func TestQuitConfirmsWhenDirty(t *testing.T) {
	m := newTestModel("a", Deps{})
	require.NoError(t, m.buf.Apply(host.Insert(host.Position{}, "b")))

	m, cmd := press(t, m, keys("q"))
	assert.Nil(t, cmd)
	assert.False(t, m.quitting)
	assert.Contains(t, m.status, "Unsaved changes")

	m, cmd = press(t, m, keys("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitClean(t *testing.T) {
	m := newTestModel("a", Deps{})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/notes/doc.md", []byte("title\n"), 0o644))
	buf, err := host.Open(fs, "/notes/doc.md")
	require.NoError(t, err)

	m := newEditorModel(context.Background(), buf, Deps{})
	require.NoError(t, m.buf.Apply(host.Insert(host.Position{}, "# ")))
	assert.Contains(t, m.View(), "[+]")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "Saved doc.md (8 B)", m.status)
	assert.False(t, m.buf.Dirty())

	data, err := afero.ReadFile(fs, "/notes/doc.md")
	require.NoError(t, err)
	assert.Equal(t, "# title\n", string(data))
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		name          string
		cursor, total int
		height        int
		offset        int
		start, end    int
	}{
		{name: "fits", cursor: 2, total: 5, height: 10, start: 0, end: 5},
		{name: "cursor below", cursor: 12, total: 20, height: 5, start: 8, end: 13},
		{name: "cursor above", cursor: 1, total: 20, height: 5, offset: 6, start: 1, end: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset := tt.offset
			start, end := scrollWindow(tt.cursor, tt.total, tt.height, &offset)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
