// Package ui is the interactive terminal editor: a cursor over a markdown
// document with quick fixes, line tools and a command palette.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/gubarz/mdassist/internal/actions"
	"github.com/gubarz/mdassist/internal/commands"
	"github.com/gubarz/mdassist/internal/edit"
	"github.com/gubarz/mdassist/internal/host"
	"github.com/gubarz/mdassist/internal/lists"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 { // Don't pool huge builders
		builderPool.Put(b)
	}
}

// ============================================================================
// Editor Model
// ============================================================================

// menuRows is the most menu entries shown at once
const menuRows = 8

// uiMode represents what the keyboard is driving
type uiMode int

const (
	modeEdit    uiMode = iota // Moving the cursor
	modeFixes                 // Choosing a quick fix
	modeLenses                // Choosing a line tool
	modePalette               // Filtering commands
	modePath                  // Typing a file path to insert
)

// insertPathID is the command that prompts for a file in the editor
const insertPathID = "path"

// Deps are the collaborators of the editor
type Deps struct {
	Registry   *commands.Registry
	QuickFixes *actions.QuickFixProvider
	Lenses     *actions.LensProvider
	Renumberer *lists.Renumberer
	Logger     *zap.Logger
}

// editorModel is the Bubble Tea model of the editor
type editorModel struct {
	ctx  context.Context
	buf  *host.Buffer
	deps Deps

	width   int
	height  int
	offset  int // viewport scroll offset
	goalCol int // column kept while moving between lines

	mode       uiMode
	menu       []actions.Action
	menuCursor int
	palette    textinput.Model
	matches    []commands.Command

	busy        bool
	status      string
	statusErr   bool
	confirmQuit bool
	quitting    bool
}

// fixesMsg carries the quick fixes computed for a line
type fixesMsg struct {
	line  int
	fixes []actions.Action
}

// commandMsg carries the result of a palette command run on a copy of the buffer
type commandMsg struct {
	name   string
	result *host.Buffer
	err    error
}

// newEditorModel creates the model and subscribes the line tools to cursor moves
func newEditorModel(ctx context.Context, buf *host.Buffer, deps Deps) editorModel {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Registry == nil {
		deps.Registry = commands.Markdown(commands.Deps{Renumberer: deps.Renumberer, Logger: deps.Logger})
	}
	if deps.QuickFixes == nil {
		deps.QuickFixes = actions.NewQuickFixProvider(nil, 0, deps.Logger)
	}
	if deps.Lenses == nil {
		deps.Lenses = actions.NewLensProvider(false)
	}

	if buf.Events() == nil {
		buf.WithEvents(host.NewEvents())
	}
	deps.Lenses.Register(buf.Events())
	buf.SetSelection(buf.Selection())

	ti := textinput.New()
	ti.Placeholder = "Type a command..."
	ti.Prompt = ": "
	ti.CharLimit = 128
	ti.Width = 50

	return editorModel{
		ctx:     ctx,
		buf:     buf,
		deps:    deps,
		goalCol: buf.Selection().Active.Character,
		palette: ti,
	}
}

// Init implements tea.Model
func (m editorModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.Width = maxInt(msg.Width-4, 10)
		m.adjustOffset()
		return m, nil

	case fixesMsg:
		m.busy = false
		if len(msg.fixes) == 0 {
			m.setStatus(fmt.Sprintf("No quick fixes on line %d", msg.line+1))
			return m, nil
		}
		m.setStatus("")
		m.openMenu(modeFixes, msg.fixes)
		return m, nil

	case commandMsg:
		m.busy = false
		m.finishCommand(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == modePalette || m.mode == modePath {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey dispatches keyboard input by mode
func (m editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.mode {
	case modeFixes, modeLenses:
		return m, m.handleMenuKey(msg)
	case modePalette:
		return m.updatePalette(msg)
	case modePath:
		return m.updatePathPrompt(msg)
	default:
		return m, m.handleEditKey(msg)
	}
}

// handleEditKey processes keyboard input while moving around the document
func (m *editorModel) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key != "q" && key != "esc" {
		m.confirmQuit = false
	}

	switch key {
	case "q", "esc":
		if m.buf.Dirty() && !m.confirmQuit {
			m.confirmQuit = true
			m.setStatus("Unsaved changes: press q again to quit, ctrl+s to save")
			return nil
		}
		m.quitting = true
		return tea.Quit
	case "ctrl+s":
		m.save()
	case "up", "k":
		m.moveLine(-1, false)
	case "down", "j":
		m.moveLine(1, false)
	case "shift+up":
		m.moveLine(-1, true)
	case "shift+down":
		m.moveLine(1, true)
	case "left", "h":
		m.moveChar(-1, false)
	case "right", "l":
		m.moveChar(1, false)
	case "shift+left":
		m.moveChar(-1, true)
	case "shift+right":
		m.moveChar(1, true)
	case "pgup":
		m.moveLine(-m.bodyHeight(), false)
	case "pgdown":
		m.moveLine(m.bodyHeight(), false)
	case "home", "0":
		m.moveTo(host.Position{Line: m.buf.Selection().Active.Line}, false)
	case "end", "$":
		line := m.buf.Selection().Active.Line
		m.moveTo(host.Position{Line: line, Character: len(host.LineText(m.buf, line))}, false)
	case "g":
		m.moveTo(host.Position{}, false)
	case "G":
		m.moveTo(host.Position{Line: m.buf.LineCount() - 1}, false)
	case ".":
		return m.loadFixes()
	case "tab":
		m.openLenses()
	case ":":
		m.openPalette()
		return textinput.Blink
	}
	return nil
}

// ============================================================================
// Cursor
// ============================================================================

// moveTo places the cursor, extending the selection when asked
func (m *editorModel) moveTo(pos host.Position, extend bool) {
	sel := host.Selection{Anchor: pos, Active: pos}
	if extend {
		sel.Anchor = m.buf.Selection().Anchor
	}
	m.buf.SetSelection(sel)
	m.goalCol = m.buf.Selection().Active.Character
	m.adjustOffset()
}

// moveLine moves the cursor by delta lines, keeping the goal column
func (m *editorModel) moveLine(delta int, extend bool) {
	goal := m.goalCol
	line := clamp(m.buf.Selection().Active.Line+delta, 0, m.buf.LineCount()-1)
	col := min(goal, len(host.LineText(m.buf, line)))
	m.moveTo(host.Position{Line: line, Character: col}, extend)
	m.goalCol = goal
}

// moveChar moves the cursor by one character, wrapping across lines
func (m *editorModel) moveChar(delta int, extend bool) {
	p := m.buf.Selection().Active
	text := host.LineText(m.buf, p.Line)
	switch {
	case delta < 0 && p.Character > 0:
		_, size := utf8.DecodeLastRuneInString(text[:p.Character])
		p.Character -= size
	case delta < 0 && p.Line > 0:
		p.Line--
		p.Character = len(host.LineText(m.buf, p.Line))
	case delta > 0 && p.Character < len(text):
		_, size := utf8.DecodeRuneInString(text[p.Character:])
		p.Character += size
	case delta > 0 && p.Line < m.buf.LineCount()-1:
		p.Line++
		p.Character = 0
	}
	m.moveTo(p, extend)
}

// adjustOffset ensures cursor is visible within viewport
func (m *editorModel) adjustOffset() {
	viewHeight := m.bodyHeight()
	cursor := m.buf.Selection().Active.Line
	if cursor < m.offset {
		m.offset = cursor
	}
	if cursor >= m.offset+viewHeight {
		m.offset = cursor - viewHeight + 1
	}
	m.offset = clamp(m.offset, 0, max(0, m.buf.LineCount()-viewHeight))
}

// bodyHeight is the number of document lines on screen
func (m editorModel) bodyHeight() int {
	return maxInt(maxInt(m.height, 10)-1-countLines(m.renderFooter(maxInt(m.width, 40))), 1)
}

// ============================================================================
// Quick Fixes and Line Tools
// ============================================================================

// loadFixes computes the quick fixes of the cursor line off the UI loop.
// Image conversion may read and resize files, so it runs on a copy.
func (m *editorModel) loadFixes() tea.Cmd {
	line := m.buf.Selection().Active.Line
	snapshot := host.NewBuffer(m.buf.Path(), m.buf.Text())
	length := len(host.LineText(snapshot, line))
	provider, ctx := m.deps.QuickFixes, m.ctx

	m.busy = true
	m.setStatus("Looking for quick fixes...")
	return func() tea.Msg {
		return fixesMsg{line: line, fixes: provider.Provide(ctx, snapshot, host.LineRange(line, length))}
	}
}

// openLenses shows the line tools of the cursor line
func (m *editorModel) openLenses() {
	list := m.deps.Lenses.Provide(m.buf)
	if len(list) == 0 {
		m.setStatus("Line tools are off (set line_tools)")
		return
	}
	m.openMenu(modeLenses, list)
}

func (m *editorModel) openMenu(mode uiMode, list []actions.Action) {
	m.mode = mode
	m.menu = list
	m.menuCursor = 0
}

func (m *editorModel) closeMenu() {
	m.mode = modeEdit
	m.menu = nil
	m.matches = nil
	m.menuCursor = 0
	m.palette.Blur()
}

// handleMenuKey processes keyboard input in the fix and line tool menus
func (m *editorModel) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.closeMenu()
	case "up", "k", "shift+tab":
		m.menuCursor = clamp(m.menuCursor-1, 0, len(m.menu)-1)
	case "down", "j", "tab":
		m.menuCursor = clamp(m.menuCursor+1, 0, len(m.menu)-1)
	case "enter":
		a := m.menu[m.menuCursor]
		m.closeMenu()
		m.apply(a)
	}
	return nil
}

// apply performs an action on the buffer
func (m *editorModel) apply(a actions.Action) {
	if err := actions.Apply(m.ctx, m.buf, a, m.deps.Registry); err != nil {
		m.setError(err)
		return
	}
	m.afterEdit()
	m.setStatus(a.Title + sizeNote(a))
}

// sizeNote describes the size of an embedded image
func sizeNote(a actions.Action) string {
	for _, e := range a.Edits {
		if strings.Contains(e.NewText, ";base64,") {
			return " (" + humanize.Bytes(uint64(len(e.NewText))) + ")"
		}
	}
	return ""
}

// ============================================================================
// Command Palette
// ============================================================================

func (m *editorModel) openPalette() {
	m.mode = modePalette
	m.palette.Prompt = ": "
	m.palette.Placeholder = "Type a command..."
	m.palette.SetValue("")
	m.palette.Focus()
	m.matches = m.deps.Registry.Filter("")
	m.menuCursor = 0
}

// updatePalette handles keyboard input while filtering commands
func (m editorModel) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeMenu()
		return m, nil
	case "up", "ctrl+p":
		m.menuCursor = clamp(m.menuCursor-1, 0, max(0, len(m.matches)-1))
		return m, nil
	case "down", "ctrl+n":
		m.menuCursor = clamp(m.menuCursor+1, 0, max(0, len(m.matches)-1))
		return m, nil
	case "enter":
		if m.menuCursor >= len(m.matches) {
			return m, nil
		}
		cmd := m.matches[m.menuCursor]
		m.closeMenu()
		if cmd.ID == insertPathID {
			m.openPathPrompt()
			return m, nil
		}
		return m, m.runCommand(cmd)
	}

	prevQuery := m.palette.Value()
	var tiCmd tea.Cmd
	m.palette, tiCmd = m.palette.Update(msg)
	if m.palette.Value() != prevQuery {
		m.matches = m.deps.Registry.Filter(m.palette.Value())
		m.menuCursor = 0
	}
	return m, tiCmd
}

func (m *editorModel) openPathPrompt() {
	m.mode = modePath
	m.palette.Prompt = "path: "
	m.palette.Placeholder = "File to insert, relative to the document..."
	m.palette.SetValue("")
	m.palette.Focus()
}

// updatePathPrompt handles keyboard input while typing a path to insert
func (m editorModel) updatePathPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeMenu()
		return m, nil
	case "enter":
		input := strings.TrimSpace(m.palette.Value())
		m.closeMenu()
		if input == "" {
			return m, nil
		}
		if err := edit.InsertPath(m.buf, relativeToDocument(m.buf.Path(), input)); err != nil {
			m.setError(err)
			return m, nil
		}
		m.afterEdit()
		m.setStatus("Markdown: Insert Path")
		return m, nil
	}

	var cmd tea.Cmd
	m.palette, cmd = m.palette.Update(msg)
	return m, cmd
}

// relativeToDocument resolves input against the document's directory and
// returns it relative to that directory
func relativeToDocument(docPath, input string) string {
	dir := filepath.Dir(docPath)
	target := input
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	if rel, err := filepath.Rel(dir, target); err == nil {
		return rel
	}
	return input
}

// runCommand runs a command on a copy of the buffer off the UI loop
func (m *editorModel) runCommand(c commands.Command) tea.Cmd {
	snapshot := host.NewBuffer(m.buf.Path(), m.buf.Text())
	snapshot.SetSelections(m.buf.Selections())
	registry, ctx := m.deps.Registry, m.ctx

	m.busy = true
	m.setStatus(c.Name + "...")
	return func() tea.Msg {
		err := registry.Run(ctx, c.ID, snapshot)
		return commandMsg{name: c.Name, result: snapshot, err: err}
	}
}

// finishCommand copies the result of a palette command into the buffer
func (m *editorModel) finishCommand(msg commandMsg) {
	if msg.err != nil {
		m.setError(msg.err)
		return
	}
	if text := msg.result.Text(); text != m.buf.Text() {
		if err := m.buf.Apply(host.Replace(fullRange(m.buf), text)); err != nil {
			m.setError(err)
			return
		}
	}
	m.buf.SetSelections(msg.result.Selections())
	m.afterEdit()
	m.setStatus(msg.name)
}

// fullRange covers the whole document
func fullRange(doc host.Document) host.Range {
	last := doc.LineCount() - 1
	return host.Range{End: host.Position{Line: last, Character: len(host.LineText(doc, last))}}
}

// ============================================================================
// Saving and Status
// ============================================================================

// afterEdit renumbers the list near the cursor and keeps it visible
func (m *editorModel) afterEdit() {
	if m.deps.Renumberer != nil {
		if err := m.deps.Renumberer.Fix(m.buf, lists.FromSelection); err != nil {
			m.deps.Logger.Warn("renumber failed", zap.Error(err))
		}
	}
	m.goalCol = m.buf.Selection().Active.Character
	m.adjustOffset()
}

func (m *editorModel) save() {
	if err := m.buf.Save(); err != nil {
		m.setError(err)
		return
	}
	m.setStatus(fmt.Sprintf("Saved %s (%s)", filepath.Base(m.buf.Path()), humanize.Bytes(uint64(len(m.buf.Text())))))
}

func (m *editorModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *editorModel) setError(err error) {
	m.deps.Logger.Warn("editor action failed", zap.Error(err))
	m.status = err.Error()
	m.statusErr = true
}

// ============================================================================
// View
// ============================================================================

// View implements tea.Model
func (m editorModel) View() string {
	if m.quitting {
		return ""
	}

	width := maxInt(m.width, 40)
	height := maxInt(m.height, 10)
	footer := m.renderFooter(width)
	bodyHeight := maxInt(height-1-countLines(footer), 1)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(m.renderTitle())
	b.WriteString("\n")
	b.WriteString(m.renderBody(width, bodyHeight))
	b.WriteString(footer)
	return b.String()
}

// renderTitle renders the file name, dirty flag and cursor position
func (m editorModel) renderTitle() string {
	name := m.buf.Path()
	if name == "" {
		name = "[untitled]"
	}
	if m.buf.Dirty() {
		name += " [+]"
	}
	pos := m.buf.Selection().Active
	info := fmt.Sprintf("  Ln %d, Col %d  %s", pos.Line+1, pos.Character+1, humanize.Bytes(uint64(len(m.buf.Text()))))
	return styles.Title.Render(name) + styles.Dim.Render(info)
}

// renderBody renders the visible document lines
func (m editorModel) renderBody(width, height int) string {
	start, end := scrollWindow(m.buf.Selection().Active.Line, m.buf.LineCount(), height, &m.offset)

	b := getBuilder()
	defer putBuilder(b)
	for i := start; i < end; i++ {
		b.WriteString(m.renderLine(i, width))
		b.WriteString("\n")
	}
	for i := end - start; i < height; i++ {
		b.WriteString(styles.Dim.Render("   ~"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderLine renders one document line with its gutter
func (m editorModel) renderLine(i, width int) string {
	text := host.LineText(m.buf, i)
	gutter := fmt.Sprintf("%4d ", i+1)
	avail := maxInt(width-len(gutter), 1)
	sel := m.buf.Selection()

	if i != sel.Active.Line {
		style := styles.MenuItem
		if !sel.IsEmpty() && i >= sel.Start().Line && i <= sel.End().Line {
			style = styles.Selected
		}
		return styles.Gutter.Render(gutter) + style.Render(truncateString(text, avail))
	}

	// Scroll horizontally so the cursor stays visible
	from := 0
	if c := sel.Active.Character; c >= avail {
		from = c - avail + 1
	}
	visible := text[from:]
	cur := sel.Active.Character - from

	at, after := " ", ""
	if cur < len(visible) {
		_, size := utf8.DecodeRuneInString(visible[cur:])
		at, after = visible[cur:cur+size], visible[cur+size:]
	}
	after = truncateString(after, maxInt(avail-cur-1, 0))

	return styles.WithSelection(styles.Gutter).Render(gutter) +
		styles.CursorLine.Render(visible[:cur]) +
		styles.Cursor.Render(at) +
		styles.CursorLine.Render(after)
}

// renderFooter renders the menu or palette and the status line
func (m editorModel) renderFooter(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	switch m.mode {
	case modeFixes, modeLenses:
		offset := 0
		start, end := scrollWindow(m.menuCursor, len(m.menu), menuRows, &offset)
		for i := start; i < end; i++ {
			a := m.menu[i]
			b.WriteString(m.renderMenuItem(a.Title+sizeNote(a), i == m.menuCursor, a.Preferred))
			b.WriteString("\n")
		}
	case modePalette:
		offset := 0
		start, end := scrollWindow(m.menuCursor, len(m.matches), menuRows, &offset)
		for i := start; i < end; i++ {
			b.WriteString(m.renderMenuItem(m.matches[i].Name, i == m.menuCursor, false))
			b.WriteString("\n")
		}
		b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d", len(m.matches), len(m.deps.Registry.Commands()))))
		b.WriteString("\n")
		b.WriteString(m.palette.View())
		b.WriteString("\n")
	case modePath:
		b.WriteString(m.palette.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus(width))
	return b.String()
}

func (m editorModel) renderMenuItem(title string, selected, preferred bool) string {
	if preferred {
		title += " ★"
	}
	if selected {
		return styles.MenuSel.Render("> " + title)
	}
	return styles.MenuItem.Render("  " + title)
}

// renderStatus renders the status message, the line tools or the key help
func (m editorModel) renderStatus(width int) string {
	if m.status != "" {
		if m.statusErr {
			return styles.Error.Render(truncateString(m.status, width))
		}
		return styles.Dim.Render(truncateString(m.status, width))
	}
	if m.mode != modeEdit {
		return styles.Dim.Render("enter apply • esc back")
	}
	if lenses := m.deps.Lenses.Provide(m.buf); len(lenses) > 0 {
		titles := make([]string, len(lenses))
		for i, a := range lenses {
			titles[i] = a.Title
		}
		return styles.Lens.Render(strings.Join(titles, " | ")) + styles.Dim.Render("  (tab)")
	}
	return styles.Dim.Render(". fixes • : commands • ctrl+s save • q quit")
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// maxInt returns the larger of a and b
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen with ellipsis
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
