package cmd

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

var errNoInput = errors.New("no interactive input")

// stdinPump is the only reader of the terminal. Menus, path prompts and the
// paste reader each read through their own reader and close it when done. A
// closed reader never takes input, and text read past the paste terminator is
// handed back to the next reader.
type stdinPump struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  []byte
	// eofs counts end-of-input marks (Ctrl-D) not yet delivered.
	eofs int
	err  error
}

// newStdinPump starts reading r. On a terminal an end of input is delivered
// once and reading goes on; otherwise it ends the stream.
func newStdinPump(r io.Reader, terminal bool) *stdinPump {
	p := &stdinPump{}
	p.cond = sync.NewCond(&p.mu)
	go p.loop(r, terminal)
	return p
}

func terminalInput(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *stdinPump) loop(r io.Reader, terminal bool) {
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)

		p.mu.Lock()
		p.buf = append(p.buf, chunk[:n]...)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF) && terminal:
			p.eofs++
		default:
			p.err = err
		}
		p.cond.Broadcast()
		p.mu.Unlock()

		if err != nil && !(errors.Is(err, io.EOF) && terminal) {
			return
		}
	}
}

// reader returns a reader for one prompt. Close it once the prompt returned.
func (p *stdinPump) reader() *pumpReader {
	return &pumpReader{pump: p}
}

// unread puts data back in front of the pending input.
func (p *stdinPump) unread(data []byte) {
	if len(data) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = append(append([]byte{}, data...), p.buf...)
	p.cond.Broadcast()
}

type pumpReader struct {
	pump   *stdinPump
	closed bool
}

func (r *pumpReader) Read(b []byte) (int, error) {
	p := r.pump
	p.mu.Lock()
	defer p.mu.Unlock()

	for !r.closed && len(p.buf) == 0 && p.eofs == 0 && p.err == nil {
		p.cond.Wait()
	}

	switch {
	case r.closed:
		return 0, io.EOF
	case len(p.buf) > 0:
		n := copy(b, p.buf)
		p.buf = p.buf[n:]
		return n, nil
	case p.eofs > 0:
		p.eofs--
		return 0, io.EOF
	default:
		return 0, p.err
	}
}

func (r *pumpReader) Close() error {
	p := r.pump
	p.mu.Lock()
	defer p.mu.Unlock()

	r.closed = true
	p.cond.Broadcast()
	return nil
}

// readPasted reads multi-line text up to a terminator line from the pump.
// Input read ahead of the terminator is handed back for the next prompt.
func (p *stdinPump) readPasted(terminator string) (string, error) {
	if p == nil {
		return "", errNoInput
	}

	r := p.reader()
	defer r.Close()

	br := bufio.NewReader(r)
	text, err := readText(br, terminator)

	rest, _ := br.Peek(br.Buffered())
	p.unread(rest)

	return text, err
}
