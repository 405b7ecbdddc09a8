package ui

import "github.com/charmbracelet/lipgloss"

// Theme collects the styles used across the panels.
type Theme struct {
	Header       lipgloss.Style
	HeaderAccent lipgloss.Style
	StateRunning lipgloss.Style
	StateWaiting lipgloss.Style
	StateDone    lipgloss.Style
	Sidebar      lipgloss.Style
	StoryDone    lipgloss.Style
	StoryActive  lipgloss.Style
	StoryPending lipgloss.Style
	Selected     lipgloss.Style
	Activity     lipgloss.Style
	ActivityKind lipgloss.Style
	Terminal     lipgloss.Style
	Footer       lipgloss.Style
	FooterKey    lipgloss.Style
	Error        lipgloss.Style
}

// DefaultTheme is a dark palette tuned for 256-color terminals.
func DefaultTheme() Theme {
	return Theme{
		Header:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		HeaderAccent: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		StateRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		StateWaiting: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		StateDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Sidebar:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		StoryDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StoryActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		StoryPending: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Activity:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		ActivityKind: lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true),
		Terminal:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Footer:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		FooterKey:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}
