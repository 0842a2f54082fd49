package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DumpCandidate is a conflicted dump offered for re-merging. Dialect is
// empty when the current stage matches no known format.
type DumpCandidate struct {
	Path    string
	Dialect string
}

type dumpItem struct {
	path    string
	dialect string
}

func (d dumpItem) Title() string {
	return d.path
}

func (d dumpItem) Description() string {
	return ""
}

func (d dumpItem) FilterValue() string {
	return d.path
}

const dialectLabelWidth = len("unsupported")

var (
	dialectLabelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	unsupportedLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	titleStyle            = lipgloss.NewStyle().Bold(true)
)

type dumpItemDelegate struct{}

func (d dumpItemDelegate) Height() int {
	return 1
}

func (d dumpItemDelegate) Spacing() int {
	return 0
}

func (d dumpItemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d dumpItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	dump, ok := item.(dumpItem)
	if !ok {
		return
	}
	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}
	label := dump.dialect
	labelStyle := dialectLabelStyle
	if label == "" {
		label = "unsupported"
		labelStyle = unsupportedLabelStyle
	}
	labelText := fmt.Sprintf("%*s", dialectLabelWidth, label)
	fmt.Fprint(w, cursor+labelStyle.Render(labelText)+"  "+dump.path)
}

type dumpSelectModel struct {
	list     list.Model
	selected string
	err      error
}

var ErrSelectorQuit = errors.New("selector quit")

func newDumpSelectModel(candidates []DumpCandidate) dumpSelectModel {
	items := make([]list.Item, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, dumpItem{path: candidate.Path, dialect: candidate.Dialect})
	}

	model := dumpSelectModel{list: list.New(items, dumpItemDelegate{}, 0, 0)}
	model.list.Title = "Select a conflicted schema dump"
	model.list.Styles.Title = titleStyle
	model.list.SetShowHelp(false)
	model.list.SetShowStatusBar(false)
	model.list.SetShowPagination(false)
	model.list.SetFilteringEnabled(false)
	return model
}

// SelectDump opens a TUI selector and returns the chosen repo-relative path.
func SelectDump(ctx context.Context, candidates []DumpCandidate) (string, error) {
	program := tea.NewProgram(newDumpSelectModel(candidates), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("dump selector TUI error: %w", err)
	}

	result, ok := finalModel.(dumpSelectModel)
	if !ok {
		return "", fmt.Errorf("dump selector returned unexpected model")
	}
	if result.err != nil {
		return "", result.err
	}
	if result.selected == "" {
		return "", fmt.Errorf("no file selected")
	}
	return result.selected, nil
}

func (m dumpSelectModel) Init() tea.Cmd {
	return nil
}

func (m dumpSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.err = ErrSelectorQuit
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(dumpItem); ok {
				m.selected = item.path
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		height := msg.Height
		if height < 5 {
			height = 5
		}
		m.list.SetSize(msg.Width, height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m dumpSelectModel) View() string {
	return m.list.View() + "\n" + "up/down: move, enter: merge, q: quit"
}
