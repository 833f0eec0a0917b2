package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorPurple    = lipgloss.Color("#8524a6")
	colorGreen     = lipgloss.Color("#3fb950")
	colorRed       = lipgloss.Color("#f85149")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple).
			Align(lipgloss.Center).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			Align(lipgloss.Center).
			MarginBottom(2)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(1).
			PaddingRight(1)

	menuItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(colorPurple).
				Bold(true).
				PaddingLeft(1).
				PaddingRight(1)

	commandStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	commandDescStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				PaddingLeft(1)

	inputStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)

	helpKeysStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)

const logo = `
 ┏━┓┏━┓┏━┓┏┳┓┏━┓╺┳╸┏━╸┏━┓┏━┓┏━╸╺┳╸
 ┣━┛┣┳┛┃ ┃┃┃┃┣━┛ ┃ ┃  ┣┳┛┣━┫┣╸  ┃
 ╹  ╹┗╸┗━┛╹ ╹╹   ╹ ┗━╸╹┗╸╹ ╹╹   ╹
`
