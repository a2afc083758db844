package commands

import (
	"context"
	"os"

	"github.com/atotto/clipboard"

	"github.com/diogo/askchat/internal/api"
	"github.com/diogo/askchat/internal/chat"
	"github.com/diogo/askchat/internal/models"
	"github.com/diogo/askchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, session *chat.Session, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// TUI is the terminal user interface.
	TUI TUIInterface

	// NewTransport creates the response channel for a mode.
	NewTransport func(mode models.Mode, opts ...api.ClientOption) (api.Transport, error)

	// HTTPClient, if set, replaces the TLS client used by ping and ask mode.
	HTTPClient api.Doer

	// Copy writes text to the clipboard.
	Copy func(string) error

	// Getenv reads environment overrides.
	Getenv func(string) string
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, session *chat.Session, opts tui.Options) error {
	return tui.RunChat(ctx, session, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:          &DefaultTUI{},
		NewTransport: api.NewTransport,
		Copy:         clipboard.WriteAll,
		Getenv:       os.Getenv,
	}
}

// orDefault fills the unset fields of deps
func (d *Dependencies) orDefault() *Dependencies {
	def := NewDependencies()
	if d == nil {
		return def
	}
	out := *d
	if out.TUI == nil {
		out.TUI = def.TUI
	}
	if out.NewTransport == nil {
		out.NewTransport = def.NewTransport
	}
	if out.Copy == nil {
		out.Copy = def.Copy
	}
	if out.Getenv == nil {
		out.Getenv = def.Getenv
	}
	return &out
}

// clientOptions returns the transport options for cfg
func (d *Dependencies) clientOptions(s *settings) []api.ClientOption {
	opts := []api.ClientOption{
		api.WithBaseURL(s.cfg.BaseURL),
		api.WithTimeout(s.cfg.Timeout()),
		api.WithDelay(s.cfg.SimulateDelay()),
		api.WithLogger(s.log.Logger),
	}
	if d.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(d.HTTPClient))
	}
	return opts
}
