package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/keyplate/pkg/errors"
)

// List styles
var (
	styleListTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleListSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleListNormal   = lipgloss.NewStyle().Foreground(colorWhite)
)

// LayoutListModel is the bubbletea model for picking a layout file when
// keys or plate is run without an argument.
type LayoutListModel struct {
	Files    []string
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewLayoutListModel creates a list model over files.
func NewLayoutListModel(files []string) LayoutListModel {
	return LayoutListModel{Files: files, Height: 15}
}

func (m LayoutListModel) Init() tea.Cmd {
	return nil
}

func (m LayoutListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Files) == 0 {
				return m, nil
			}
			m.Selected = m.Files[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m LayoutListModel) View() string {
	var b strings.Builder

	b.WriteString(styleListTitle.Render("Select Layout"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Files))
	for i := m.Offset; i < end; i++ {
		if i == m.Cursor {
			b.WriteString(styleListSelected.Render("▸ " + m.Files[i]))
		} else {
			b.WriteString(styleListNormal.Render("  " + m.Files[i]))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Files))))
	return b.String()
}

// findLayouts lists the layout files directly under dir, sorted by name.
func findLayouts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name())), ".")
		if slices.Contains(layoutExtensions, ext) {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

// interactive reports whether the CLI reads from a terminal.
func (c *CLI) interactive() bool {
	f, ok := c.stdin.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// layoutArg returns the layout argument, or lets the user pick a layout file
// from the working directory when none was given on a terminal. An empty
// result with a nil error means the picker was cancelled.
func (c *CLI) layoutArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if !c.interactive() {
		return "", errors.New(errors.ErrCodeInvalidInput, "no layout given (pass a file, or - for stdin)")
	}

	files, err := findLayouts(".")
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", errors.New(errors.ErrCodeFileNotFound,
			"no layout files (.%s) in the current directory", strings.Join(layoutExtensions, ", ."))
	}

	p := tea.NewProgram(NewLayoutListModel(files), tea.WithInput(c.stdin), tea.WithOutput(c.stderr))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(LayoutListModel)
	if !ok || m.Selected == "" {
		c.ui.detail("No selection made")
		return "", nil
	}
	return m.Selected, nil
}
