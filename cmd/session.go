package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/channel"
	"github.com/spigell/resume-matcher/internal/matcher"
	"github.com/spigell/resume-matcher/internal/preferences"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/secrets"
)

var fieldLabels = map[channel.Kind]string{
	channel.Resume: "Resume",
	channel.Job:    "Job description",
}

// session is one client window: two input channels, the report view and the
// orchestrator submitting them.
type session struct {
	logger *zap.Logger
	input  *stdinPump
	out    io.Writer
	status io.Writer

	client *matcher.Client
	prefs  *preferences.Store

	resume     *channel.Channel
	job        *channel.Channel
	resumeZone *channel.DropZone
	jobZone    *channel.DropZone

	board        *report.Board
	terminal     *report.Terminal
	renderer     *report.Renderer
	orchestrator *analysis.Orchestrator
}

type sessionOptions struct {
	input    *stdinPump
	out      io.Writer
	status   io.Writer
	notifier analysis.Notifier
	animate  bool
}

func newSession(config *Config, logger *zap.Logger, opts sessionOptions) (*session, error) {
	token, err := secrets.Load(secrets.Source{
		Name:     "backend token",
		Value:    config.Server.Token,
		File:     config.Server.TokenFile,
		Optional: true,
	})
	if err != nil {
		return nil, err
	}

	client := matcher.New(logger, config.Server.URL, token, config.Server.Timeout)
	if config.Server.UserAgent != "" {
		client.UserAgent = config.Server.UserAgent
	}

	prefs, err := openPreferences(config, logger)
	if err != nil {
		return nil, err
	}

	s := &session{
		logger: logger,
		input:  opts.input,
		out:    opts.out,
		status: opts.status,
		client: client,
		prefs:  prefs,
		board:  report.NewBoard(),
	}

	s.resume = channel.New(channel.Resume, client, logger)
	s.job = channel.New(channel.Job, client, logger)
	s.resumeZone = channel.NewDropZone(s.resume)
	s.jobZone = channel.NewDropZone(s.job)

	s.terminal = report.NewTerminal(opts.out, s.board, prefs.Theme())

	var renderOpts []report.Option
	if !opts.animate || !config.Render.Animate || !s.terminal.Live() {
		renderOpts = append(renderOpts, report.WithoutAnimation())
	}
	s.renderer = report.New(s.board, logger, renderOpts...)

	s.orchestrator = analysis.New(analysis.Deps{
		Resume:    s.resume,
		Job:       s.job,
		Scorer:    client,
		Presenter: s.renderer,
		Notifier:  opts.notifier,
		Logger:    logger,
		OnBusy:    s.busy,
	})

	return s, nil
}

func openPreferences(config *Config, logger *zap.Logger) (*preferences.Store, error) {
	path := config.PreferencesFile
	if path == "" {
		var err error
		if path, err = preferences.DefaultPath(); err != nil {
			return nil, fmt.Errorf("locating preferences file: %w", err)
		}
	}

	return preferences.Open(path, logger), nil
}

func (s *session) channel(kind channel.Kind) *channel.Channel {
	if kind == channel.Job {
		return s.job
	}
	return s.resume
}

func (s *session) dropZone(kind channel.Kind) *channel.DropZone {
	if kind == channel.Job {
		return s.jobZone
	}
	return s.resumeZone
}

// loadFile hands the file at path to the channel of kind. The file is read as
// part of the acquisition.
func (s *session) loadFile(ctx context.Context, kind channel.Kind, path string) error {
	return s.channel(kind).Acquire(ctx, channel.File(path))
}

// drop treats input as paths dragged onto the terminal. Only the first file is
// used.
func (s *session) drop(ctx context.Context, kind channel.Kind, input string) error {
	paths, err := s.dropped(kind, input)
	if err != nil {
		return err
	}

	return s.dropZone(kind).DropFiles(ctx, paths)
}

// dropped splits the dropped input into paths. The drop zone loses its
// highlight when the input cannot be parsed.
func (s *session) dropped(kind channel.Kind, input string) ([]string, error) {
	paths, err := channel.SplitDropped(input)
	if err != nil {
		s.dropZone(kind).Leave()
		return nil, fmt.Errorf("reading dropped paths: %w", err)
	}

	if len(paths) > 1 {
		s.logger.Debug("ignoring extra dropped files", zap.Strings("ignored", paths[1:]))
	}

	return paths, nil
}

func (s *session) paste(ctx context.Context, kind channel.Kind, text string) error {
	return s.channel(kind).Acquire(ctx, channel.Pasted(text))
}

// analyze submits both fields and waits for the report to settle.
func (s *session) analyze(ctx context.Context) error {
	err := s.orchestrator.Submit(ctx)
	if err != nil {
		s.printFieldErrors()
		return err
	}

	s.renderer.Wait()
	if !s.terminal.Live() {
		s.terminal.Flush()
	}
	// keep the report on screen, the next one is drawn below
	s.terminal.Release()

	return nil
}

func (s *session) toggleTheme() (preferences.Theme, error) {
	theme, err := s.prefs.Toggle()
	if err != nil {
		return theme, err
	}

	s.terminal.SetTheme(theme)
	return theme, nil
}

func (s *session) busy(busy bool) {
	if busy {
		fmt.Fprintln(s.status, "Analyzing...")
	}
	s.logger.Debug("analyze control", zap.Bool("disabled", busy))
}

func (s *session) printFieldErrors() {
	for _, ch := range []*channel.Channel{s.resume, s.job} {
		if err := ch.FieldErr(); err != nil {
			fmt.Fprintf(s.status, "%s: %s\n", fieldLabels[ch.Kind()], color.RedString(err.Error()))
		}
	}
}

// printChannelErrors shows the acquisition error of each channel in its slot.
func (s *session) printChannelErrors() {
	for _, ch := range []*channel.Channel{s.resume, s.job} {
		if err := ch.Err(); err != nil {
			fmt.Fprintf(s.status, "%s: %s\n", fieldLabels[ch.Kind()], color.RedString(err.Error()))
		}
	}
}

// describe summarizes a channel for the interactive menu.
func describe(snap channel.Snapshot) string {
	switch snap.State {
	case channel.StateBusy:
		return fmt.Sprintf("processing %s...", snap.Selected)
	case channel.StateError:
		return "error: " + snap.Err.Error()
	case channel.StateReady:
		text := strings.TrimSpace(snap.Text)
		if snap.Selected != "" {
			return fmt.Sprintf("%s (%d chars)", snap.Selected, len([]rune(text)))
		}
		if text == "" {
			return "empty"
		}
		return fmt.Sprintf("pasted (%d chars)", len([]rune(text)))
	default:
		return "empty"
	}
}
