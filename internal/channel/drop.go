package channel

import (
	"context"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"
)

// DropZone is the drag-and-drop affordance of a channel.
type DropZone struct {
	target *Channel

	mu          sync.Mutex
	highlighted bool
}

func NewDropZone(target *Channel) *DropZone {
	return &DropZone{target: target}
}

// Enter marks the zone as hovered by a drag.
func (z *DropZone) Enter() { z.setHighlight(true) }

// Over is called repeatedly while a drag moves over the zone.
func (z *DropZone) Over() { z.setHighlight(true) }

func (z *DropZone) Leave() { z.setHighlight(false) }

func (z *DropZone) Highlighted() bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.highlighted
}

// Drop clears the highlight and hands the first dropped file to the channel.
// Dropping nothing is a no-op.
func (z *DropZone) Drop(ctx context.Context, uploads []Upload) error {
	z.setHighlight(false)

	if len(uploads) == 0 {
		return nil
	}

	return z.target.Acquire(ctx, uploads[0])
}

// DropFiles is Drop for paths dragged onto a terminal. The first path is read
// by the channel itself, so an unreadable file ends in the channel error state.
func (z *DropZone) DropFiles(ctx context.Context, paths []string) error {
	z.setHighlight(false)

	if len(paths) == 0 {
		return nil
	}

	return z.target.Acquire(ctx, File(paths[0]))
}

func (z *DropZone) setHighlight(v bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.highlighted = v
}

// SplitDropped parses what a terminal inserts when files are dragged onto it:
// one or more paths, shell-quoted or backslash-escaped.
func SplitDropped(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	parser := shellwords.NewParser()
	parser.ParseEnv = false
	parser.ParseBacktick = false

	return parser.Parse(input)
}
