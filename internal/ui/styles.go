package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	checkedStyle = lipgloss.NewStyle().Faint(true)
	lateStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	grabbedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)
