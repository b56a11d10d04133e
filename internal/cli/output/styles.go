package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/portsql/pkg/token"
)

// Styles holds lipgloss styles for text output. Colors are dropped
// automatically when the output is not a terminal.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Word     lipgloss.Style
	Operator lipgloss.Style
	Literal  lipgloss.Style
	Bind     lipgloss.Style
	Macro    lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() *Styles {
	return &Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),

		Word:     lipgloss.NewStyle(),
		Operator: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		Literal:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Bind:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		Macro:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// ForToken returns the style used to print tokens of kind k.
func (s *Styles) ForToken(k token.Kind) lipgloss.Style {
	switch {
	case k == token.Word:
		return s.Word
	case k == token.Operator:
		return s.Operator
	case k == token.BindParameter:
		return s.Bind
	case k == token.PortabilityFunction, k == token.PortabilityArg:
		return s.Macro
	case k.IsLiteral():
		return s.Literal
	default:
		return s.Muted
	}
}
