package output

import "github.com/charmbracelet/lipgloss"

var (
	labelStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	pidStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	arrowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)
