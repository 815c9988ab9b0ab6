package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/channel"
	"github.com/spigell/resume-matcher/internal/validation"
)

const (
	PromptLoadResume  = "Load resume file"
	PromptDropResume  = "Drop resume file"
	PromptPasteResume = "Paste resume text"
	PromptLoadJob     = "Load job description file"
	PromptDropJob     = "Drop job description file"
	PromptPasteJob    = "Paste job description"
	PromptAnalyze     = "Analyze match"
	PromptTheme       = "Toggle theme"
	PromptHistory     = "Show recent analyses"
	PromptExit        = "Exit"
)

// pasteTerminator ends multi-line paste input.
const pasteTerminator = "."

var (
	errExit          = errors.New("exit requested")
	errInputDisabled = errors.New("input is disabled while the file is processed")
)

// inputActions are the menu entries that feed a channel. They are offered only
// while the channel accepts input.
var inputActions = map[channel.Kind][]string{
	channel.Resume: {PromptLoadResume, PromptDropResume, PromptPasteResume},
	channel.Job:    {PromptLoadJob, PromptDropJob, PromptPasteJob},
}

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Fill in both fields from a menu and analyze them",
	Run: func(cmd *cobra.Command, _ []string) {
		interactive(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func interactive(ctx context.Context) {
	config, logger := setup()
	defer logger.Sync()

	input := newStdinPump(os.Stdin, terminalInput(os.Stdin))

	s, err := newSession(config, logger, sessionOptions{
		input:    input,
		out:      os.Stdout,
		status:   os.Stderr,
		notifier: dialogNotifier{input: input, logger: logger},
		animate:  true,
	})
	if err != nil {
		logger.Fatal("starting a session", zap.Error(err))
	}

	for {
		items := s.menuItems()
		stdin := input.reader()
		prompt := promptui.Select{
			Label: s.label(),
			Items: items,
			Size:  len(items),
			Stdin: stdin,
		}

		_, action, err := prompt.Run()
		stdin.Close()
		if err != nil {
			logger.Info("exiting", zap.Error(err))
			return
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				continue
			}
			if errors.Is(err, errInputDisabled) {
				fmt.Fprintln(s.status, err)
				continue
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func (s *session) handleAction(ctx context.Context, action string) error {
	if kind, ok := inputKind(action); ok && !s.channel(kind).Enabled() {
		return fmt.Errorf("%s: %w", fieldLabels[kind], errInputDisabled)
	}

	switch action {
	case PromptLoadResume:
		return s.askFile(ctx, channel.Resume)
	case PromptDropResume:
		return s.askDrop(ctx, channel.Resume)
	case PromptPasteResume:
		return s.askPaste(ctx, channel.Resume)
	case PromptLoadJob:
		return s.askFile(ctx, channel.Job)
	case PromptDropJob:
		return s.askDrop(ctx, channel.Job)
	case PromptPasteJob:
		return s.askPaste(ctx, channel.Job)
	case PromptAnalyze:
		err := s.analyze(ctx)
		// already shown next to the fields or in a dialog
		if err != nil && !errors.Is(err, validation.ErrEmptyField) && !errors.Is(err, analysis.ErrBusy) {
			s.logger.Debug("analysis did not complete", zap.Error(err))
		}
		return nil
	case PromptTheme:
		theme, err := s.toggleTheme()
		if err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
		fmt.Fprintf(s.status, "Theme: %s (saved to %s)\n", theme, s.prefs.Path())
		return nil
	case PromptHistory:
		records, err := s.client.History(ctx)
		if err != nil {
			return err
		}
		printHistory(s.out, records)
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// menuItems lists the actions available now. Input actions of a channel that
// is processing a file are left out.
func (s *session) menuItems() []string {
	items := make([]string, 0, 10)
	for _, kind := range []channel.Kind{channel.Resume, channel.Job} {
		if s.channel(kind).Enabled() {
			items = append(items, inputActions[kind]...)
		}
	}
	return append(items, PromptAnalyze, PromptTheme, PromptHistory, PromptExit)
}

func inputKind(action string) (channel.Kind, bool) {
	for kind, actions := range inputActions {
		for _, a := range actions {
			if a == action {
				return kind, true
			}
		}
	}
	return "", false
}

func (s *session) label() string {
	return fmt.Sprintf("%s: %s | %s: %s",
		fieldLabels[channel.Resume], describe(s.resume.Snapshot()),
		fieldLabels[channel.Job], describe(s.job.Snapshot()),
	)
}

func (s *session) askFile(ctx context.Context, kind channel.Kind) error {
	stdin := s.input.reader()
	defer stdin.Close()

	prompt := promptui.Prompt{
		Label:    fmt.Sprintf("Path to the %s file", strings.ToLower(fieldLabels[kind])),
		Validate: requireInput,
		Stdin:    stdin,
	}

	path, err := prompt.Run()
	if err != nil {
		return err
	}

	path = strings.TrimSpace(path)

	// extraction may take a while, the menu shows progress in its label
	go s.acquire(kind, func() error { return s.loadFile(ctx, kind, path) })
	return nil
}

func (s *session) askDrop(ctx context.Context, kind channel.Kind) error {
	zone := s.dropZone(kind)
	zone.Enter()

	stdin := s.input.reader()
	defer stdin.Close()

	prompt := promptui.Prompt{
		Stdin: stdin,
		Label: fmt.Sprintf("Drag a %s file here and press ENTER", strings.ToLower(fieldLabels[kind])),
		// runs on every keystroke while the terminal inserts the dropped paths
		Validate: func(string) error {
			zone.Over()
			return nil
		},
	}

	input, err := prompt.Run()
	if err != nil {
		zone.Leave()
		return err
	}

	paths, err := s.dropped(kind, input)
	if err != nil {
		return err
	}

	go s.acquire(kind, func() error { return zone.DropFiles(ctx, paths) })
	return nil
}

func (s *session) askPaste(ctx context.Context, kind channel.Kind) error {
	fmt.Fprintf(s.status, "Paste the %s. Finish with a line containing only %q or Ctrl-D.\n",
		strings.ToLower(fieldLabels[kind]), pasteTerminator)

	text, err := s.input.readPasted(pasteTerminator)
	if err != nil {
		return err
	}

	return s.paste(ctx, kind, text)
}

// readText reads lines from r until a line equal to terminator or the end of
// input. Line breaks inside the text are kept, the terminator is consumed.
func readText(r *bufio.Reader, terminator string) (string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}

		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == terminator {
			break
		}
		if line != "" {
			lines = append(lines, trimmed)
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	return strings.Join(lines, "\n"), nil
}

// acquire runs fn in the background. Failures are kept by the channel and shown
// in the menu label.
func (s *session) acquire(kind channel.Kind, fn func() error) {
	err := fn()
	switch {
	case err == nil, errors.Is(err, channel.ErrStale):
	default:
		s.logger.Debug("acquisition failed", zap.String("channel", string(kind)), zap.Error(err))
	}
}

func requireInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("a path is required")
	}
	return nil
}
