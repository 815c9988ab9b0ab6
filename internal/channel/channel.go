package channel

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/matcher"
	"github.com/spigell/resume-matcher/internal/utils"
	"github.com/spigell/resume-matcher/internal/validation"
)

const previewLength = 40

// Kind identifies the field a channel feeds.
type Kind string

const (
	Resume Kind = "resume"
	Job    Kind = "job"
)

// State of a channel. Ready and Error go back to Busy on the next acquisition;
// there is no terminal state.
type State int

const (
	StateIdle State = iota
	StateBusy
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrStale is returned by Acquire when a newer acquisition started before this
// one finished. Its outcome was discarded.
var ErrStale = errors.New("superseded by a newer attempt")

// Extractor turns PDF bytes into text.
type Extractor interface {
	ExtractPDF(ctx context.Context, name string, data []byte) (string, error)
}

// Channel owns the text buffer of one field and the state of acquiring it.
type Channel struct {
	kind      Kind
	extractor Extractor
	logger    *zap.Logger

	mu       sync.Mutex
	attempt  uint64
	state    State
	text     string
	err      error
	fieldErr error
	selected string
	enabled  bool
}

// Snapshot is a consistent copy of the observable channel state.
type Snapshot struct {
	Kind     Kind
	State    State
	Text     string
	Err      error
	FieldErr error
	Selected string
	Enabled  bool
}

// settled is the outcome of one acquisition.
type settled struct {
	attempt  uint64
	selected string
	text     string
	err      error
}

func New(kind Kind, extractor Extractor, logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Channel{
		kind:      kind,
		extractor: extractor,
		logger:    logger.With(zap.String("channel", string(kind))),
		state:     StateIdle,
		enabled:   true,
	}
}

// Acquire replaces the channel text with the text resolved from src. Only the
// latest acquisition may change the buffer: when another one starts before
// this one settles, the result is dropped and ErrStale is returned.
func (c *Channel) Acquire(ctx context.Context, src Source) error {
	attempt, selected := c.begin(src)

	text, err := c.resolve(ctx, src)

	return c.settle(settled{attempt: attempt, selected: selected, text: text, err: err})
}

func (c *Channel) begin(src Source) (uint64, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempt++
	c.state = StateBusy
	c.err = nil
	c.enabled = false

	selected := ""
	switch s := src.(type) {
	case Upload:
		selected = s.Name
	case File:
		selected = filepath.Base(string(s))
	}
	c.selected = selected

	c.logger.Debug("source selected",
		zap.Uint64("attempt", c.attempt),
		zap.String("file", selected),
		zap.Stringer("state", c.state),
	)

	return c.attempt, selected
}

func (c *Channel) settle(ev settled) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.attempt != c.attempt {
		c.logger.Debug("discarding stale result",
			zap.Uint64("attempt", ev.attempt),
			zap.Uint64("latest", c.attempt),
		)
		return ErrStale
	}

	c.enabled = true

	if ev.err != nil {
		c.text = ""
		c.selected = ""
		c.err = ev.err
		c.state = StateError
		c.logger.Info("acquisition failed",
			zap.Uint64("attempt", ev.attempt),
			zap.String("file", ev.selected),
			zap.Stringer("state", c.state),
			zap.Error(ev.err),
		)
		return ev.err
	}

	c.text = ev.text
	c.state = StateReady
	c.logger.Debug("acquisition completed",
		zap.Uint64("attempt", ev.attempt),
		zap.String("file", ev.selected),
		zap.Int("text_length", len(ev.text)),
		zap.String("preview", utils.TruncateForLog(ev.text, previewLength)),
		zap.Stringer("state", c.state),
	)

	return nil
}

func (c *Channel) resolve(ctx context.Context, src Source) (string, error) {
	switch s := src.(type) {
	case Pasted:
		return string(s), nil
	case Upload:
		return c.resolveUpload(ctx, s)
	case File:
		upload, err := FromFile(string(s))
		if err != nil {
			return "", err
		}
		return c.resolveUpload(ctx, upload)
	case nil:
		return "", errors.New("no source")
	default:
		return "", fmt.Errorf("unsupported source %T", src)
	}
}

func (c *Channel) resolveUpload(ctx context.Context, upload Upload) (string, error) {
	if !validation.AcceptableSize(upload.size()) {
		return "", validation.ErrFileTooLarge
	}

	if validation.IsPDF(upload.Name, upload.Type) {
		return c.extract(ctx, upload)
	}

	text, err := decodeText(upload.Data)
	if err != nil {
		return "", err
	}
	if !validation.NonEmpty(text) {
		return "", validation.ErrEmptyFile
	}

	return text, nil
}

func (c *Channel) extract(ctx context.Context, upload Upload) (string, error) {
	if c.extractor == nil {
		return "", errors.New("pdf extraction is not configured")
	}

	text, err := c.extractor.ExtractPDF(ctx, upload.Name, upload.Data)
	if err != nil {
		if errors.Is(err, matcher.ErrNoExtractableText) {
			return "", &validation.Error{Kind: validation.EmptyFile, Message: err.Error(), Err: err}
		}
		return "", err
	}

	if !validation.NonEmpty(text) {
		return "", &validation.Error{
			Kind:    validation.EmptyFile,
			Message: matcher.ErrNoExtractableText.Error(),
			Err:     matcher.ErrNoExtractableText,
		}
	}

	return text, nil
}

// Flag sets the field-level error shown next to the text, independent of the
// acquisition error slot. A nil err clears it.
func (c *Channel) Flag(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fieldErr = err
}

func (c *Channel) Kind() Kind { return c.kind }

func (c *Channel) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error of the last settled acquisition, if it failed.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Channel) FieldErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldErr
}

// Enabled reports whether the channel accepts input. It is false while busy.
func (c *Channel) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Selected returns the name of the file behind the buffer. It is cleared when
// an acquisition fails.
func (c *Channel) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Channel) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Kind:     c.kind,
		State:    c.state,
		Text:     c.text,
		Err:      c.err,
		FieldErr: c.fieldErr,
		Selected: c.selected,
		Enabled:  c.enabled,
	}
}
