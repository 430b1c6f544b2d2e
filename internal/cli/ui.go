package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Printer
// =============================================================================

// printer renders styled status lines. The CLI sends them to stderr so that
// "-o -" keeps stdout clean for plate data.
type printer struct {
	w io.Writer
}

func (p *printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

// success prints a success message.
func (p *printer) success(format string, args ...any) {
	p.line(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// failure prints an error message.
func (p *printer) failure(format string, args ...any) {
	p.line(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// warning prints a warning message.
func (p *printer) warning(format string, args ...any) {
	p.line(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// info prints a status message.
func (p *printer) info(format string, args ...any) {
	p.line(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, muted line.
func (p *printer) detail(format string, args ...any) {
	p.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints an output file line.
func (p *printer) file(path string) {
	p.line("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// keyValue prints a labeled value.
func (p *printer) keyValue(key, value string) {
	p.line(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// stats prints plate statistics on a single line:
//
//	61 keys · 5 stabilizers · cached
func (p *printer) stats(keyCount, stabilizerCount int, cached bool) {
	var parts []string
	if keyCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d keys", keyCount)))
	}
	if stabilizerCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d stabilizers", stabilizerCount)))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	p.line("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// nextStep prints a suggested next command.
func (p *printer) nextStep(description, cmd string) {
	p.line(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// newline prints an empty line.
func (p *printer) newline() {
	p.line("")
}
