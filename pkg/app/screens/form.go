package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/rnaexport/pkg/app/styles"
	"github.com/kerbaras/rnaexport/pkg/data"
)

// Formats offered by the form, in cycling order
var Formats = []data.DataType{data.DataTypeFasta, data.DataTypeJSON, data.DataType("txt")}

// FormScreen collects a query and a format for a new export
type FormScreen struct {
	input  textinput.Model
	format int
	width  int
	height int
	err    error
}

func NewFormScreen() *FormScreen {
	ti := textinput.New()
	ti.Placeholder = "Search query, e.g. HOTAIR AND so_rna_type_name:\"lncRNA\""
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	return &FormScreen{input: ti}
}

func (s *FormScreen) Init() tea.Cmd {
	return textinput.Blink
}

// Typing reports whether keystrokes go to the text input
func (s *FormScreen) Typing() bool {
	return s.input.Focused()
}

func (s *FormScreen) DataType() data.DataType {
	return Formats[s.format]
}

func (s *FormScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(s.input.Value())
			if query == "" {
				s.err = fmt.Errorf("query cannot be empty")
				return s, nil
			}
			s.err = nil
			s.input.Reset()
			return s, func() tea.Msg {
				return startExport{query: query, dataType: s.DataType()}
			}

		case "ctrl+f":
			s.format = (s.format + 1) % len(Formats)
			return s, nil

		case "esc":
			// Switch focus between input and format selection
			if s.input.Focused() {
				s.input.Blur()
			} else {
				s.input.Focus()
				cmd = textinput.Blink
			}

		case "left", "h":
			if !s.input.Focused() {
				s.format = (s.format + len(Formats) - 1) % len(Formats)
			}

		case "right", "l":
			if !s.input.Focused() {
				s.format = (s.format + 1) % len(Formats)
			}
		}
	}

	// Update text input
	if s.input.Focused() {
		var inputCmd tea.Cmd
		s.input, inputCmd = s.input.Update(msg)
		cmd = tea.Batch(cmd, inputCmd)
	}

	return s, cmd
}

func (s *FormScreen) View() string {
	header := styles.TitleStyle.Render("🔎 New Export")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	formats := make([]string, len(Formats))
	for i, f := range Formats {
		if i == s.format {
			formats[i] = styles.ActiveTabStyle.Render(string(f))
		} else {
			formats[i] = styles.InactiveTabStyle.Render(string(f))
		}
	}
	formatView := lipgloss.JoinHorizontal(lipgloss.Top, formats...)

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	help := styles.HelpStyle.Render(
		"enter: start export • ctrl+f: next format • esc: switch focus • ←/→: format • tab: switch view • ctrl+c: quit",
	)

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s%s", header, inputView, formatView, errorMsg, help)
}
