// Package output delivers command results to stdout, the clipboard or the
// edited file.
package output

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// systemClipboard implements Clipboard using system commands
type systemClipboard struct {
	fallback io.Writer
}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	cmd := findClipboardCommand()
	if cmd == nil {
		// No clipboard tool found, just print
		_, err := fmt.Fprintln(c.fallback, text)
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard %s: %w", cmd.Path, err)
	}
	return nil
}

// findClipboardCommand returns the appropriate clipboard command for the system
func findClipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

// commandExists checks if a command is available in PATH
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Output Handling
// ============================================================================

// Mode represents how a result should be handled
type Mode string

const (
	ModePrint Mode = "print"
	ModeCopy  Mode = "copy"
	ModeWrite Mode = "write"
)

// ErrNoFile is returned when write mode has no file to write to
var ErrNoFile = errors.New("write mode needs a document")

// ParseMode validates a mode name. Empty means print.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(name)); m {
	case "":
		return ModePrint, nil
	case ModePrint, ModeCopy, ModeWrite:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want print, copy or write)", name)
	}
}

// Saver persists an edited document
type Saver interface {
	Save() error
	Text() string
}

// Writer handles results based on a mode
type Writer struct {
	out       io.Writer
	clipboard Clipboard
}

// NewWriter creates a writer printing to out
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, clipboard: &systemClipboard{fallback: out}}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (w *Writer) WithClipboard(c Clipboard) *Writer {
	w.clipboard = c
	return w
}

// Text delivers a standalone result such as a data URI
func (w *Writer) Text(text string, mode Mode) error {
	switch mode {
	case ModeWrite:
		return ErrNoFile
	case ModeCopy:
		return w.clipboard.Copy(text)
	default: // print
		_, err := fmt.Fprintln(w.out, text)
		return err
	}
}

// Document delivers an edited document. Write mode saves it in place.
func (w *Writer) Document(doc Saver, mode Mode) error {
	switch mode {
	case ModeWrite:
		return doc.Save()
	case ModeCopy:
		return w.clipboard.Copy(doc.Text())
	default: // print
		_, err := io.WriteString(w.out, doc.Text())
		return err
	}
}
