package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/askchat/internal/chat"
	"github.com/diogo/askchat/internal/models"
	"github.com/diogo/askchat/internal/render"
	"github.com/diogo/askchat/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	deps = deps.orDefault()

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the store assistant.

Enter sends the question, Alt+Enter inserts a newline. Esc cancels a reply
in progress and quits when idle. Press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps)
		},
	}
	cmd.Flags().String("busy", "", "What a question does while a reply is arriving: reject or cancel")
	return cmd
}

func runChat(cmd *cobra.Command, deps *Dependencies) error {
	s, err := loadSettings(cmd, deps, nil)
	if err != nil {
		return err
	}
	defer s.log.Close()

	if cmd.Flags().Changed("busy") {
		s.cfg.BusyPolicy, _ = cmd.Flags().GetString("busy")
	}
	policy, ok := chat.ParseBusyPolicy(s.cfg.BusyPolicy)
	if !ok {
		return fmt.Errorf("invalid busy policy %q: must be %q or %q", s.cfg.BusyPolicy, chat.BusyReject, chat.BusyCancel)
	}

	mode, _ := models.ParseMode(s.cfg.Mode)
	transport, err := deps.NewTransport(mode, deps.clientOptions(s)...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	store := chat.NewStore()
	tui.Seed(store, s.cfg.SeedPrompt, s.cfg.Greeting)

	session := chat.NewSession(transport,
		chat.WithStore(store),
		chat.WithBusyPolicy(policy),
		chat.WithPlaceholder(s.cfg.Placeholder),
		chat.WithErrorText(s.cfg.ErrorText),
		chat.WithSessionLogger(s.log.Logger),
	)

	if s.cfg.TUITheme != "" && render.SetTUITheme(s.cfg.TUITheme) {
		tui.UpdateTheme()
	}

	s.log.Info().Str("mode", string(mode)).Str("busy", string(policy)).Msg("chat started")

	subtitle := string(mode)
	if mode != models.ModeSimulate {
		subtitle += "  " + s.cfg.BaseURL
	}

	err = deps.TUI.RunChat(cmd.Context(), session, tui.Options{
		Subtitle: subtitle,
		Render:   render.OptionsFromConfig(s.cfg.Markdown, deps.Getenv),
		Copy:     deps.Copy,
	})
	s.log.Info().Err(err).Msg("chat ended")
	return err
}
