package main

import (
	"fmt"
	"os"

	"codeberg.org/promptcraft/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	env := os.Getenv("PROMPTCRAFT_ENV")

	if env == "" {
		env = "development"
	}

	app := tui.NewApp(env, tui.NewClient())
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running promptcraft: %v\n", err)
		os.Exit(1)
	}
}
