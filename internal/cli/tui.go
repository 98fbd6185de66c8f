package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flashaov/pkg/compositor"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FlagPickerModel - Interactive option toggling
// =============================================================================

// flagItem is one toggleable option.
type flagItem struct {
	label string
	help  string
	value func(*compositor.Options) *bool
}

var flagItems = []flagItem{
	{"Separate data", "Depth, Mist, Normal, ... in their own file", func(o *compositor.Options) *bool { return &o.Flags.SeparateData }},
	{"Separate cryptomatte", "Crypto* passes in their own file", func(o *compositor.Options) *bool { return &o.Flags.SeparateCryptomatte }},
	{"Separate shader AOVs", "custom shader outputs in their own file", func(o *compositor.Options) *bool { return &o.Flags.SeparateShaderAOV }},
	{"Separate light groups", "Combined_* light groups in their own file", func(o *compositor.Options) *bool { return &o.Flags.SeparateLightGroup }},
	{"Denoise", "denoise beauty and light-group slots", func(o *compositor.Options) *bool { return &o.Denoise }},
	{"Prune slots", "remove slots the layer no longer produces", func(o *compositor.Options) *bool { return &o.PruneSlots }},
}

// FlagPickerModel is the bubbletea model for toggling reconcile options.
type FlagPickerModel struct {
	Options compositor.Options
	Cursor  int
	Saved   bool
	Quit    bool
}

// NewFlagPickerModel creates a picker starting from opts.
func NewFlagPickerModel(opts compositor.Options) FlagPickerModel {
	return FlagPickerModel{Options: opts}
}

func (m FlagPickerModel) Init() tea.Cmd {
	return nil
}

func (m FlagPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quit = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(flagItems)-1 {
				m.Cursor++
			}
		case " ", "x":
			v := flagItems[m.Cursor].value(&m.Options)
			*v = !*v
		case "enter", "s":
			m.Saved = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FlagPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Output options"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ save  q quit"))
	b.WriteString("\n\n")

	opts := m.Options
	rows := make([][]string, len(flagItems))
	for i, item := range flagItems {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if *item.value(&opts) {
			box = "[x]"
		}
		rows[i] = []string{cursor, box, item.label, item.help}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Option", "Effect").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				return listSelectedStyle
			}
			if col == 3 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(flagItems))))

	return b.String()
}
