// Package tui implements the interactive chat interface on top of
// Bubbletea, following the Elm architecture.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mars-labs/mars-cli/internal/adapters/driving/tui/styles"
	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driving"
)

// ErrNoChatService is returned when the app is built without a backend.
var ErrNoChatService = errors.New("chat service not configured")

// answerReceived carries the result of an Ask round trip back into the
// update loop.
type answerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// App is the chat TUI application. It implements tea.Model.
type App struct {
	// chat answers questions against the session corpus.
	chat driving.ChatService

	// sessionID scopes every question to one corpus.
	sessionID string

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// input is the question prompt.
	input textinput.Model

	// transcript shows past questions and answers.
	transcript viewport.Model

	// history accumulates rendered transcript blocks.
	history []string

	// asking is true while a question is in flight.
	asking bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the chat application over the given chat service.
func NewApp(chat driving.ChatService, sessionID string) (*App, error) {
	if chat == nil {
		return nil, ErrNoChatService
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a question about your documents..."
	ti.Focus()
	ti.CharLimit = 512

	vp := viewport.New(80, 20)

	return &App{
		chat:       chat,
		sessionID:  sessionID,
		ctx:        context.Background(),
		styles:     styles.DefaultStyles(),
		input:      ti,
		transcript: vp,
		width:      80,
		height:     24,
	}, nil
}

// WithContext sets the context used for Ask round trips.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init initialises the application.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.transcript.Width = msg.Width
		// Leave room for the title, input box and help line.
		a.transcript.Height = max(msg.Height-7, 3)
		a.input.Width = max(msg.Width-6, 20)
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case answerReceived:
		a.asking = false
		a.err = msg.Err
		if msg.Err == nil {
			a.appendExchange(msg.Question, msg.Answer)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return a, tea.Quit

	case tea.KeyEnter:
		question := strings.TrimSpace(a.input.Value())
		if question == "" || a.asking {
			return a, nil
		}
		a.asking = true
		a.err = nil
		a.input.SetValue("")
		return a, a.performAsk(question)

	case tea.KeyUp, tea.KeyPgUp:
		a.transcript.LineUp(1)
		return a, nil

	case tea.KeyDown, tea.KeyPgDown:
		a.transcript.LineDown(1)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// performAsk runs the question against the chat service off the update
// loop and reports back via answerReceived.
func (a *App) performAsk(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := a.chat.Ask(a.ctx, question, a.sessionID)
		return answerReceived{Question: question, Answer: answer, Err: err}
	}
}

// appendExchange renders one question/answer pair into the transcript
// and scrolls to the bottom.
func (a *App) appendExchange(question string, answer *domain.Answer) {
	var b strings.Builder
	b.WriteString(a.styles.Question.Render("You: " + question))
	b.WriteString("\n")
	b.WriteString(a.styles.Answer.Render(answer.Response))
	if len(answer.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(a.styles.Sources.Render("Sources: " + strings.Join(answer.Sources, ", ")))
	}

	a.history = append(a.history, b.String())
	a.transcript.SetContent(strings.Join(a.history, "\n\n"))
	a.transcript.GotoBottom()
}

// View renders the application.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render(fmt.Sprintf("mars chat · session %s", shortID(a.sessionID))))
	b.WriteString("\n\n")

	if len(a.history) == 0 {
		b.WriteString(a.styles.Muted.Render("No questions yet. Type below and press Enter."))
		b.WriteString("\n")
	} else {
		b.WriteString(a.transcript.View())
		b.WriteString("\n")
	}

	if a.asking {
		b.WriteString(a.styles.Muted.Render("Thinking..."))
		b.WriteString("\n")
	}
	if a.err != nil {
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(a.styles.InputField.Render(a.input.View()))
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("enter ask · ↑/↓ scroll · esc quit"))
	return b.String()
}

// History returns the rendered transcript blocks. Used in tests.
func (a *App) History() []string {
	return a.history
}

// shortID abbreviates a UUID for the title bar.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
