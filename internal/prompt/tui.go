package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// TUI asks questions with a bubbletea text input.
type TUI struct {
	in  io.Reader
	out io.Writer
}

// NewTUI creates a TUI prompter on the given terminal streams.
func NewTUI(in io.Reader, out io.Writer) *TUI {
	return &TUI{in: in, out: out}
}

// Ask runs a single-question program until the user confirms or cancels.
func (p *TUI) Ask(ctx context.Context, question string) (string, error) {
	prog := tea.NewProgram(newInputModel(question),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
	)

	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("running prompt: %w", err)
	}

	m, ok := final.(inputModel)
	if !ok || m.cancelled {
		return "", ErrCancelled
	}
	return m.Value(), nil
}

// inputModel is the bubbletea model behind TUI.Ask.
type inputModel struct {
	question  string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newInputModel(question string) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "path/to/file"
	ti.CharLimit = 4096
	ti.Focus()

	return inputModel{question: question, input: ti}
}

// Value returns the trimmed answer.
func (m inputModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Init starts the cursor blinking.
func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if m.Value() == "" {
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the question and the input line.
func (m inputModel) View() string {
	q := questionStyle.Render(m.question)
	switch {
	case m.cancelled:
		return q + "\n"
	case m.done:
		// Leave the answered question on screen after the program exits.
		return q + answerStyle.Render(m.Value()) + "\n"
	default:
		return q + m.input.View() + "\n" + hintStyle.Render("enter to confirm, esc to cancel") + "\n"
	}
}
