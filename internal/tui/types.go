package tui

import (
	"codeberg.org/promptcraft/server/internal/optimizer"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateEditor
)

// main TUI application model
type Model struct {
	state   AppState
	mode    string
	width   int
	height  int
	err     error
	welcome *Welcome
	editor  *EditorModel
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// sent to transition to the editor state
type EnterEditorMsg struct{}

// prompt editor and result view
type EditorModel struct {
	input      textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	renderer   *glamour.TermRenderer
	client     *Client
	styles     []optimizer.Style
	styleIndex int
	width      int
	height     int
	result     string
	status     string
	usage      *Usage
	isFetching bool
	ready      bool
}

// sent when an optimization completes
type OptimizeResponseMsg struct {
	result OptimizeResult
}

// sent when an optimization fails
type OptimizeErrorMsg struct {
	err error
}

// sent when the usage lookup completes
type UsageMsg struct {
	usage Usage
}

// welcome screen model
type Welcome struct {
	mode     string
	input    string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
}
