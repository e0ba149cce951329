package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sop-agent/internal/helper"
	"sop-agent/internal/models"
	"sop-agent/internal/session"
)

// QueryPort is the TUI-facing subset of the query pipeline.
type QueryPort interface {
	Query(ctx context.Context, question string, decisionMode bool, topK int) (*models.AnswerResult, error)
}

const (
	minTopK     = 1
	maxTopK     = 10
	defaultTopK = 8
)

// Model is the Bubble Tea model for the interactive session.
type Model struct {
	pipeline     QueryPort
	history      *session.History
	input        textinput.Model
	viewport     viewport.Model
	result       *models.AnswerResult
	decisionMode bool
	showHistory  bool
	topK         int
	status       string
	ready        bool
}

// New creates a new TUI model instance.
func New(pipeline QueryPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a policy question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline: pipeline,
		history:  session.New(),
		input:    ti,
		viewport: vp,
		topK:     defaultTopK,
		status:   "Ready. Ctrl+D toggles decision mode, Ctrl+K cycles top-K, Ctrl+H shows memory.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + mode line, status, input box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+d":
			m.decisionMode = !m.decisionMode
			if m.decisionMode {
				m.status = "Decision mode ON"
			} else {
				m.status = "Decision mode OFF"
			}
			return m, nil
		case "ctrl+k":
			m.topK++
			if m.topK > maxTopK {
				m.topK = minTopK
			}
			m.status = fmt.Sprintf("Top-K = %d", m.topK)
			return m, nil
		case "ctrl+h":
			m.showHistory = !m.showHistory
			m.viewport.SetContent(m.renderResult())
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			// Blocking call: one interaction runs to completion
			// before the next is accepted.
			out, err := m.pipeline.Query(context.Background(), q, m.decisionMode, m.topK)
			if err != nil {
				m.status = "Error: " + err.Error()
				return m, nil
			}
			m.result = out
			m.history.Append(session.RoleUser, q)
			m.history.Append(session.RoleAssistant, answerText(out))
			m.status = fmt.Sprintf("Retrieved %d chunks.", len(out.Sources))
			m.input.SetValue("")
			m.showHistory = false
			m.viewport.SetContent(m.renderResult())
			m.viewport.GotoTop()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("SOP Compliance Agent")
	mode := "answer"
	if m.decisionMode {
		mode = "decision"
	}
	meta := metaStyle.Render(fmt.Sprintf("mode=%s  top-k=%d", mode, m.topK))
	body := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "  " + meta + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderResult() string {
	if m.showHistory {
		return m.renderHistory()
	}
	if m.result == nil {
		return "No answer yet."
	}

	var b strings.Builder
	if m.result.JSON != nil {
		b.WriteString(titleStyle.Render("Decision"))
		b.WriteString("\n")
		b.WriteString(helper.PrettyJSON(m.result.JSON))
	} else {
		b.WriteString(titleStyle.Render("Answer"))
		b.WriteString("\n")
		b.WriteString(m.result.Text)
	}
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Sources"))
	b.WriteString("\n")
	for i, chunk := range m.result.Sources {
		b.WriteString(helper.FormatChunk(i+1, chunk))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) renderHistory() string {
	turns := m.history.Turns()
	if len(turns) == 0 {
		return "Conversation memory is empty."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversation Memory"))
	b.WriteString("\n")
	for _, turn := range turns {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	return b.String()
}

func answerText(out *models.AnswerResult) string {
	if out.JSON != nil {
		return helper.PrettyJSON(out.JSON)
	}
	return out.Text
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
