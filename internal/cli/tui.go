package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/crossplot/pkg/dataset"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// DatasetListModel is the bubbletea model for interactive dataset selection.
type DatasetListModel struct {
	Entries  []dataset.Entry
	Cursor   int
	Offset   int
	Height   int
	Selected *dataset.Entry
}

// NewDatasetListModel creates a list over entries.
func NewDatasetListModel(entries []dataset.Entry) DatasetListModel {
	return DatasetListModel{Entries: entries, Height: 10}
}

func (m DatasetListModel) Init() tea.Cmd {
	return nil
}

func (m DatasetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Entries) == 0 {
				return m, tea.Quit
			}
			e := m.Entries[m.Cursor]
			m.Selected = &e
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 3)
	}
	return m, nil
}

func (m DatasetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Dataset"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ fetch  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Entries))
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		line := fmt.Sprintf("%s%-16s", cursor, e.Name)
		b.WriteString(style.Render(line))
		b.WriteString(" " + listDimStyle.Render(e.Description))
		b.WriteString("\n")
	}

	if len(m.Entries) > 0 {
		e := m.Entries[m.Cursor]
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  tables: %s  [%d/%d]", strings.Join(tableNames(e), ", "), m.Cursor+1, len(m.Entries))))
	}
	return b.String()
}

func tableNames(e dataset.Entry) []string {
	names := make([]string, len(e.Files))
	for i, f := range e.Files {
		names[i] = f.Table
	}
	return names
}
