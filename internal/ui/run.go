package ui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/mdassist/internal/host"
)

// ============================================================================
// Run TUI
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	// If stdout is piped or captured by $(), draw on /dev/tty instead
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr // Last resort fallback
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// Run opens buf in the interactive editor until the user quits. Saving is
// explicit, so unsaved edits are dropped on quit.
func Run(ctx context.Context, buf *host.Buffer, deps Deps) error {
	m := newEditorModel(ctx, buf, deps)

	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()
	RefreshStyles() // Refresh after getTTY sets up the renderer

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithOutput(ttyOut),
		tea.WithInput(ttyIn),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
