// Package models contains data types and constants for the assistant service.
package models

// Service paths, relative to the configured base URL
const (
	PathInfo   = "/"
	PathAsk    = "/ask"
	PathStream = "/stream"
)

// DefaultBaseURL is where the assistant service listens in development
const DefaultBaseURL = "http://127.0.0.1:8000"

// Texts shown in the assistant bubble at the various stages of a request
const (
	// PlaceholderText is shown until the first fragment arrives
	PlaceholderText = "Thinking..."

	// ErrorText replaces the in-flight message when the channel fails
	ErrorText = "Sorry, something went wrong. Please try again."

	// EmptyReplyText replaces the placeholder when the channel closes
	// without delivering any fragment
	EmptyReplyText = "(no answer)"

	// CancelledText replaces the in-flight message when the request is cancelled
	CancelledText = "(cancelled)"

	// SimulatedReplyText is the canned reply of the offline simulator
	SimulatedReplyText = "I'm checking on that for you..."
)

// Seed conversation shown when a chat starts
const (
	DefaultSeedPrompt = "What can I ask you to do?"
	DefaultGreeting   = "You can ask me about our slushie flavors, store locations, or current rewards!"
)

// ServerErrorPrefix marks an in-band error report on the stream
const ServerErrorPrefix = "Error: "

// Mode selects which response channel a chat uses
type Mode string

const (
	ModeStream   Mode = "stream"
	ModeAsk      Mode = "ask"
	ModeSimulate Mode = "simulate"
)

// Modes returns every supported mode
func Modes() []Mode {
	return []Mode{ModeStream, ModeAsk, ModeSimulate}
}

// ParseMode returns the mode for name, and false when name is unknown
func ParseMode(name string) (Mode, bool) {
	for _, m := range Modes() {
		if string(m) == name {
			return m, true
		}
	}
	return "", false
}
