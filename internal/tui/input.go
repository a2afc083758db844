package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Producer receives accepted input. The returned command, if any, is run
// by the program.
type Producer func(text string) tea.Cmd

// InputCapture collects the user's question. Enter submits; Alt+Enter or
// Ctrl+J inserts a line break.
type InputCapture struct {
	textarea textarea.Model
	produce  Producer
	send     key.Binding
}

// NewInputCapture creates a focused input that hands accepted text to produce
func NewInputCapture(produce Producer) InputCapture {
	ta := textarea.New()
	ta.Placeholder = "Ask about flavors, store locations or rewards..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("alt+enter", "newline"),
	)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	return InputCapture{
		textarea: ta,
		produce:  produce,
		send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	}
}

// Submit hands the trimmed buffer to the producer and clears the buffer.
// Blank input is ignored and left as is. It reports whether text was accepted.
func (c *InputCapture) Submit() (tea.Cmd, bool) {
	text := strings.TrimSpace(c.textarea.Value())
	if text == "" {
		return nil, false
	}
	c.textarea.Reset()
	if c.produce == nil {
		return nil, true
	}
	return c.produce(text), true
}

// Update handles a key press. The send key submits and never reaches the
// textarea, so it cannot insert a line break.
func (c InputCapture) Update(msg tea.KeyMsg) (InputCapture, tea.Cmd) {
	if key.Matches(msg, c.send) {
		cmd, _ := c.Submit()
		return c, cmd
	}
	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return c, cmd
}

// IsSend reports whether msg is the submit key
func (c InputCapture) IsSend(msg tea.KeyMsg) bool {
	return key.Matches(msg, c.send)
}

// Empty reports whether the buffer holds only whitespace
func (c InputCapture) Empty() bool {
	return strings.TrimSpace(c.textarea.Value()) == ""
}

// Value returns the raw buffer
func (c InputCapture) Value() string {
	return c.textarea.Value()
}

// SetValue replaces the buffer
func (c *InputCapture) SetValue(s string) {
	c.textarea.SetValue(s)
}

// SetWidth sets the editing width
func (c *InputCapture) SetWidth(w int) {
	c.textarea.SetWidth(w)
}

// View renders the textarea
func (c InputCapture) View() string {
	return c.textarea.View()
}

// Blink returns the cursor blink command for the program's Init
func (c InputCapture) Blink() tea.Cmd {
	return textarea.Blink
}
