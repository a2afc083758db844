package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/askchat/internal/api"
)

// NewPingCmd creates the command that checks the service is reachable
func NewPingCmd(deps *Dependencies) *cobra.Command {
	deps = deps.orDefault()

	return &cobra.Command{
		Use:   "ping",
		Short: "Check the assistant service and list its endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPing(cmd, deps)
		},
	}
}

func runPing(cmd *cobra.Command, deps *Dependencies) error {
	s, err := loadSettings(cmd, deps, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.log.Close()

	client, err := api.NewAskClient(deps.clientOptions(s)...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	startTime := time.Now()
	info, err := client.Info(cmd.Context())
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	took := time.Since(startTime).Round(time.Millisecond)
	s.log.Info().Dur("took", took).Int("endpoints", len(info.Endpoints)).Msg("ping")

	out := cmd.OutOrStdout()
	okStyle := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	routeStyle := lipgloss.NewStyle().Foreground(colorText).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	fmt.Fprintf(out, "%s %s %s\n", okStyle.Render("✓"), s.cfg.BaseURL, descStyle.Render("("+took.String()+")"))
	fmt.Fprintln(out, info.Message)
	for _, ep := range info.Endpoints {
		fmt.Fprintf(out, "  %-16s %s\n", routeStyle.Render(ep.Route), descStyle.Render(ep.Description))
	}
	return nil
}
