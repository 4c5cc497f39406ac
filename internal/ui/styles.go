package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/mdassist/internal/config"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// Document view styles
	Title      lipgloss.Style
	Gutter     lipgloss.Style
	CursorLine lipgloss.Style
	Cursor     lipgloss.Style
	Selected   lipgloss.Style
	Dim        lipgloss.Style

	// Menu and status styles
	Lens     lipgloss.Style
	MenuItem lipgloss.Style
	MenuSel  lipgloss.Style
	Error    lipgloss.Style

	// Chrome styles
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:      lipgloss.NewStyle().Bold(true),
		Gutter:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		CursorLine: lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:     lipgloss.NewStyle().Reverse(true),
		Selected:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Lens:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		MenuItem:   lipgloss.NewStyle(),
		MenuSel:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Divider:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg: lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	titleColor := parseANSIColor(config.GetColorTitle())
	lensColor := parseANSIColor(config.GetColorLens())
	dimColor := parseANSIColor(config.GetColorDim())
	cursorColor := lipgloss.Color(config.GetColorCursor())

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	s.Gutter = lipgloss.NewStyle().Foreground(dimColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)
	s.Lens = lipgloss.NewStyle().Foreground(lensColor)
	s.MenuSel = lipgloss.NewStyle().Foreground(cursorColor).Bold(true)
	s.Divider = lipgloss.NewStyle().Foreground(dimColor)
}

// WithSelection returns a copy of the given style with the cursor line background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
