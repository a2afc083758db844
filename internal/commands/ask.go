package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/askchat/internal/api"
	apierrors "github.com/diogo/askchat/internal/errors"
	"github.com/diogo/askchat/internal/models"
	"github.com/diogo/askchat/internal/render"
)

// askFlags holds the flags of the ask command
type askFlags struct {
	file   string
	output string
	raw    bool
	copy   bool
}

// NewAskCmd creates the one-shot ask command
func NewAskCmd(deps *Dependencies) *cobra.Command {
	deps = deps.orDefault()
	var flags askFlags

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Long: `Ask the assistant a single question and print the reply.

The question is taken from the arguments, from --file, or from stdin.
When stdout is a terminal the reply is rendered as markdown; otherwise
fragments are written as they arrive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, deps, args, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read the question from file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Save the reply to file")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "Print only the reply text")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy the reply to the clipboard")
	return cmd
}

func runAsk(cmd *cobra.Command, deps *Dependencies, args []string, flags askFlags) error {
	question, err := readQuestion(args, flags.file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	s, err := loadSettings(cmd, deps, errOut)
	if err != nil {
		return err
	}
	defer s.log.Close()

	mode, _ := models.ParseMode(s.cfg.Mode)
	transport, err := deps.NewTransport(mode, deps.clientOptions(s)...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	decorated := !flags.raw && isTerminal(out)
	// fragments go straight to out unless they are rendered at the end or
	// saved to a file
	streaming := !decorated && flags.output == ""

	var spin *spinner
	if decorated {
		spin = newSpinner(errOut, "Waiting for "+models.OriginAssistant.Label())
		spin.start()
	}

	ctx := cmd.Context()
	startTime := time.Now()

	var (
		answer    strings.Builder
		fragments int
		failure   error
		terminal  bool
	)
	for ev := range transport.Open(ctx, question) {
		switch ev.Kind {
		case api.EventOpen:
			if spin != nil {
				spin.setMessage(models.OriginAssistant.Label() + " is typing")
			}
		case api.EventFragment:
			fragments++
			answer.WriteString(ev.Text)
			if streaming {
				fmt.Fprint(out, ev.Text)
			}
		case api.EventClosed:
			terminal = true
		case api.EventError:
			terminal = true
			failure = ev.Err
		}
	}

	s.log.Info().
		Str("mode", string(mode)).
		Int("fragments", fragments).
		Dur("took", time.Since(startTime)).
		Err(failure).
		Msg("ask finished")

	if spin != nil {
		if failure != nil || !terminal {
			spin.stopWithError()
		} else {
			spin.stopWithSuccess("Done")
		}
	}

	switch {
	case !terminal && ctx.Err() != nil:
		return fmt.Errorf("ask cancelled: %w", ctx.Err())
	case !terminal:
		return errors.New("ask failed: reply ended without completing")
	case failure != nil:
		return fmt.Errorf("ask failed: %w", failure)
	}

	text := answer.String()
	if fragments == 0 && !flags.raw {
		fmt.Fprintln(errOut, lipgloss.NewStyle().Foreground(colorTextDim).Render(models.EmptyReplyText))
	}

	if flags.copy || s.cfg.CopyToClipboard {
		copyReply(deps, errOut, text)
	}

	if flags.output != "" {
		if err := os.WriteFile(flags.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !flags.raw {
			fmt.Fprintln(errOut, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", flags.output),
			))
		}
		return nil
	}

	if streaming {
		if fragments > 0 && !flags.raw && !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(out)
		}
		return nil
	}

	printReply(out, text, terminalWidth(out), render.OptionsFromConfig(s.cfg.Markdown, deps.Getenv))
	return nil
}

// readQuestion takes the question from --file, the arguments, or piped
// stdin, in that order
func readQuestion(args []string, file string, stdin io.Reader) (string, error) {
	var question string
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		question = string(data)
	case len(args) > 0:
		question = strings.Join(args, " ")
	case stdinPiped(stdin):
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		question = string(data)
	default:
		return "", errors.New("no question given: pass it as an argument, with --file, or on stdin")
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", apierrors.ErrEmptyQuestion
	}
	return question, nil
}

// stdinPiped reports whether r carries piped input rather than a terminal
func stdinPiped(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

func copyReply(deps *Dependencies, errOut io.Writer, text string) {
	if err := deps.Copy(text); err != nil {
		fmt.Fprintln(errOut, lipgloss.NewStyle().Foreground(colorWarning).Render(
			fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
		))
		return
	}
	fmt.Fprintln(errOut, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
}

// printReply prints the reply as a labelled bubble, like the chat view
func printReply(out io.Writer, text string, termWidth int, opts render.Options) {
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	theme := render.GetTUITheme()
	label := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(models.OriginAssistant.Label())
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.AssistantBubble).
		Foreground(theme.Text).
		Padding(0, 1).
		Width(bubbleWidth).
		Render(render.Reply(text, opts.WithWidth(contentWidth)))

	fmt.Fprintln(out, label)
	fmt.Fprintln(out, bubble)
}

// isTerminal returns true if w is connected to a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the terminal width or a default value
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}
