package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/diogo/askchat/internal/api"
	"github.com/diogo/askchat/internal/chat"
	apierrors "github.com/diogo/askchat/internal/errors"
	"github.com/diogo/askchat/internal/models"
	"github.com/diogo/askchat/internal/render"
)

// Message types for the TUI
type (
	// eventMsg carries one event of a request's reply
	eventMsg struct {
		reqID  uuid.UUID
		event  api.Event
		events <-chan api.Event
	}
	// streamDoneMsg is sent once a request's event channel is closed
	streamDoneMsg struct {
		reqID uuid.UUID
	}
	// noticeMsg shows a one-line notice above the status bar
	noticeMsg struct {
		text  string
		isErr bool
	}
)

type keyMap struct {
	Cancel key.Binding
	Copy   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Copy:   key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy reply")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// scrollKeys keeps plain letters for typing; only paging keys scroll
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("ctrl+up")),
		Down:         key.NewBinding(key.WithKeys("ctrl+down")),
	}
}

// Options configures the chat model
type Options struct {
	// Subtitle is shown next to the title, e.g. mode and service URL
	Subtitle string
	// Render configures markdown rendering of replies
	Render render.Options
	// Copy writes text to the clipboard. Defaults to the system clipboard.
	Copy func(string) error
}

// renderedMessage caches the rendered form of one message
type renderedMessage struct {
	text  string
	width int
	out   string
}

// Model is the chat program. It owns the session and renders its store.
type Model struct {
	ctx     context.Context
	session *chat.Session
	opts    Options
	keys    keyMap

	viewport viewport.Model
	input    InputCapture
	spinner  spinner.Model

	renderedVersion uint64
	cache           map[models.MessageID]renderedMessage

	notice    string
	noticeErr bool
	ready     bool
	quitting  bool

	width  int
	height int
}

// NewModel creates the chat model for session. ctx bounds every request.
func NewModel(ctx context.Context, session *chat.Session, opts Options) Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Render.Width == 0 {
		opts.Render = render.DefaultOptions()
	}

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:     ctx,
		session: session,
		opts:    opts,
		keys:    defaultKeyMap(),
		input:   NewInputCapture(submitter(ctx, session)),
		spinner: s,
		cache:   make(map[models.MessageID]renderedMessage),
	}
}

// submitter is the producer wired to the input: it submits the question
// and starts pulling the reply events.
func submitter(ctx context.Context, session *chat.Session) Producer {
	return func(text string) tea.Cmd {
		req, err := session.Submit(ctx, text)
		if errors.Is(err, apierrors.ErrBusy) {
			return notify(busyNotice, false)
		}
		if err != nil {
			return notify(err.Error(), true)
		}
		return waitForEvent(req.ID, req.Events)
	}
}

// waitForEvent pulls the next event of a request. Each eventMsg re-arms it,
// so events are applied one at a time in arrival order.
func waitForEvent(reqID uuid.UUID, events <-chan api.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamDoneMsg{reqID: reqID}
		}
		return eventMsg{reqID: reqID, event: ev, events: events}
	}
}

const busyNotice = "Still answering. Wait for the reply or press Esc to cancel it"

func notify(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{text: text, isErr: isErr}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.input.Blink()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	wasBusy := m.session.Busy()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			m.quitting = true
			m.session.Close()
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)

	case eventMsg:
		applied := m.session.Apply(msg.reqID, msg.event)
		if applied && msg.event.Kind == api.EventError {
			m.setNotice(FormatError(msg.event.Err), true)
		}
		// keep draining even stale channels so their goroutines can exit
		cmds = append(cmds, waitForEvent(msg.reqID, msg.events))

	case streamDoneMsg:
		m.session.Complete(msg.reqID)

	case noticeMsg:
		m.setNotice(msg.text, msg.isErr)

	case spinner.TickMsg:
		if m.session.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !wasBusy && m.session.Busy() {
		cmds = append(cmds, m.spinner.Tick)
	}

	m.syncViewport()
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press. It reports whether the program should quit.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true

	case key.Matches(msg, m.keys.Cancel):
		if m.session.Cancel() {
			m.setNotice("Reply cancelled", false)
			return nil, false
		}
		return nil, true

	case key.Matches(msg, m.keys.Copy):
		m.copyLastReply()
		return nil, false

	case m.input.IsSend(msg):
		if m.input.Empty() {
			return nil, false
		}
		if m.session.Busy() && m.session.Policy() == chat.BusyReject {
			m.setNotice(busyNotice, false)
			return nil, false
		}
		m.clearNotice()
	}

	var scroll tea.Cmd
	m.viewport, scroll = m.viewport.Update(msg)

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return tea.Batch(scroll, cmd), false
}

func (m *Model) copyLastReply() {
	reply, ok := m.session.Store().LastFrom(models.OriginAssistant)
	if !ok {
		m.setNotice("Nothing to copy yet", false)
		return
	}
	if err := m.opts.Copy(reply.Text); err != nil {
		m.setNotice(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.setNotice("Copied last reply to clipboard", false)
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) clearNotice() {
	m.notice = ""
	m.noticeErr = false
}

// layout heights
const (
	headerHeight = 3 // header panel with border
	inputHeight  = 5 // input panel with border and label
	statusHeight = 2 // notice line and status bar
	minViewport  = 5
)

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - headerHeight - inputHeight - statusHeight - 2
	if vpHeight < minViewport {
		vpHeight = minViewport
	}
	contentWidth := width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.viewport.KeyMap = scrollKeys()
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(contentWidth - 2)
	m.renderedVersion = 0
}

// syncViewport re-renders the conversation when the store changed and keeps
// the newest message in view
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	version := m.session.Store().Version()
	if version == m.renderedVersion {
		return
	}
	m.renderedVersion = version
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessages() string {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 8
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.session.Store().Messages() {
		if i > 0 {
			content.WriteString("\n")
		}
		if msg.IsUser() {
			content.WriteString(userLabelStyle.Render(msg.Origin.Label()))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))
		} else {
			content.WriteString(assistantLabelStyle.Render(msg.Origin.Label()))
			content.WriteString("\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(m.renderReply(msg, bubbleWidth-4)))
		}
		content.WriteString("\n")
	}
	return content.String()
}

// renderReply renders assistant markdown, reusing the previous result when
// neither the text nor the width changed
func (m *Model) renderReply(msg models.Message, width int) string {
	if cached, ok := m.cache[msg.ID]; ok && cached.text == msg.Text && cached.width == width {
		return cached.out
	}
	out := render.Reply(msg.Text, m.opts.Render.WithWidth(width))
	m.cache[msg.ID] = renderedMessage{text: msg.Text, width: width, out: out}
	return out
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4

	headerParts := []string{titleStyle.Render("askchat")}
	if m.opts.Subtitle != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.opts.Subtitle),
		)
	}
	header := headerStyle.Width(contentWidth).Render(lipgloss.JoinHorizontal(lipgloss.Center, headerParts...))

	messages := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())

	label := inputLabelStyle.Render(models.OriginUser.Label())
	if m.session.Busy() {
		label = lipgloss.JoinHorizontal(lipgloss.Center,
			label,
			hintStyle.Render("   "),
			m.spinner.View(),
			loadingStyle.Render(" "+models.OriginAssistant.Label()+" is typing"),
		)
	}
	input := inputPanelStyle.Width(contentWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, label, m.input.View()),
	)

	notice := ""
	if m.notice != "" {
		if m.noticeErr {
			notice = errorStyle.Render(firstLine(m.notice))
		} else {
			notice = noticeStyle.Render(m.notice)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		messages,
		input,
		notice,
		m.renderStatusBar(contentWidth),
	)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// renderStatusBar renders the bottom status bar with shortcuts. The send
// hint is dimmed while there is nothing to send.
func (m Model) renderStatusBar(width int) string {
	escDesc := "Quit"
	if m.session.Busy() {
		escDesc = "Cancel"
	}

	shortcuts := []struct {
		key      string
		desc     string
		disabled bool
	}{
		{"Enter", "Send", m.input.Empty()},
		{"Alt+Enter", "Newline", false},
		{"Esc", escDesc, false},
		{"Ctrl+Y", "Copy", false},
		{"PgUp/PgDn", "Scroll", false},
		{"Ctrl+C", "Quit", false},
	}

	var items []string
	for _, s := range shortcuts {
		if s.disabled {
			items = append(items, statusDisabledStyle.Render(s.key+" "+s.desc))
			continue
		}
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunChat runs the chat program until the user quits or ctx is done.
// Every open channel is released before it returns.
func RunChat(ctx context.Context, session *chat.Session, opts Options) error {
	defer session.Close()

	p := tea.NewProgram(
		NewModel(ctx, session, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}

// Seed appends the opening exchange shown before the first question
func Seed(store *chat.Store, prompt, greeting string) {
	if prompt != "" {
		store.Append(models.OriginUser, prompt)
	}
	if greeting != "" {
		store.Append(models.OriginAssistant, greeting)
	}
}
