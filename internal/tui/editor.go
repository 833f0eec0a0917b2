package tui

import (
	"fmt"
	"strings"

	"codeberg.org/promptcraft/server/internal/optimizer"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const inputHeight = 5

// returns a new prompt editor
func NewEditor(client *Client) *EditorModel {
	ta := textarea.New()
	ta.Placeholder = "describe what you want the AI to do..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	// enter submits; alt+enter inserts a newline
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPurple)

	return &EditorModel{
		input:   ta,
		spinner: sp,
		client:  client,
		styles:  optimizer.Styles(),
	}
}

func (m *EditorModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.client.UsageCmd())
}

// currently selected style
func (m *EditorModel) Style() optimizer.Style {
	return m.styles[m.styleIndex]
}

func (m *EditorModel) Update(msg tea.Msg) (*EditorModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.styleIndex = (m.styleIndex + 1) % len(m.styles)
			return m, nil

		case "shift+tab":
			m.styleIndex = (m.styleIndex + len(m.styles) - 1) % len(m.styles)
			return m, nil

		case "enter":
			if m.isFetching {
				return m, nil
			}

			prompt := strings.TrimSpace(m.input.Value())
			if prompt == "" {
				m.status = "type a prompt first"
				return m, nil
			}

			m.isFetching = true
			m.status = ""

			return m, tea.Batch(m.spinner.Tick, m.client.OptimizeCmd(prompt, m.Style()))

		case "ctrl+l":
			m.input.Reset()
			m.result = ""
			m.status = ""
			m.viewport.SetContent("")
			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case OptimizeResponseMsg:
		m.isFetching = false
		m.result = msg.result.OptimizedPrompt
		usage := msg.result.Usage
		m.usage = &usage
		m.status = fmt.Sprintf("style: %s | model: %s", msg.result.Style, msg.result.Model)
		m.viewport.SetContent(m.render(m.result))
		m.viewport.GotoTop()
		return m, nil

	case OptimizeErrorMsg:
		m.isFetching = false
		m.status = fmt.Sprintf("error: %v", msg.err)
		return m, m.client.UsageCmd()

	case UsageMsg:
		usage := msg.usage
		m.usage = &usage
		return m, nil

	case spinner.TickMsg:
		if !m.isFetching {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *EditorModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(20, width-6))

	// header, style line, input box and status take the rest
	vpHeight := max(3, height-inputHeight-10)

	if !m.ready {
		m.viewport = viewport.New(max(20, width-4), vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = max(20, width-4)
		m.viewport.Height = vpHeight
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(20, width-8)),
	)
	if err == nil {
		m.renderer = renderer
	}

	if m.result != "" {
		m.viewport.SetContent(m.render(m.result))
	}
}

func (m *EditorModel) render(text string) string {
	if m.renderer == nil {
		return text
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}

	return out
}

func (m *EditorModel) View() string {
	var b strings.Builder

	header := lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render("PROMPTCRAFT")
	help := helpKeysStyle.Render("[Enter: Optimize] [Tab: Style] [Ctrl+L: Clear] [Ctrl+C: Back]")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
		header,
		strings.Repeat(" ", max(1, m.width-lipgloss.Width(header)-lipgloss.Width(help)-2)),
		help,
	))
	b.WriteString("\n\n")

	b.WriteString(m.styleBar())
	b.WriteString("\n")

	var output string
	switch {
	case !m.ready:
		output = ""
	case m.result == "":
		output = infoStyle.Render("your optimized prompt will appear here.")
	default:
		output = m.viewport.View()
	}

	b.WriteString(borderStyle.Width(max(20, m.width-4)).Render(output))
	b.WriteString("\n")
	b.WriteString(borderStyle.Width(max(20, m.width-4)).Render(m.input.View()))
	b.WriteString("\n")

	if m.isFetching {
		b.WriteString(m.spinner.View() + infoStyle.Render(" optimizing..."))
	} else if m.status != "" {
		b.WriteString(infoStyle.Render(m.status))
	}

	b.WriteString("\n")
	b.WriteString(m.usageLine())

	return b.String()
}

func (m *EditorModel) styleBar() string {
	parts := make([]string, 0, len(m.styles))
	for i, s := range m.styles {
		if i == m.styleIndex {
			parts = append(parts, menuItemSelectedStyle.Render(string(s)))
			continue
		}
		parts = append(parts, menuItemStyle.Render(string(s)))
	}

	return strings.Join(parts, " ")
}

func (m *EditorModel) usageLine() string {
	if m.usage == nil {
		return ""
	}

	if m.usage.Premium {
		return successStyle.Render("premium: unlimited optimizations")
	}

	line := fmt.Sprintf("%d of %d free optimizations left today", m.usage.Remaining, m.usage.Limit)
	if m.usage.Remaining == 0 {
		return errorStyle.Render(line)
	}

	return infoStyle.Render(line)
}
