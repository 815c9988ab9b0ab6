package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/spigell/resume-matcher/internal/preferences"
)

var headings = map[Region]string{
	MatchedSkills: "Matched skills",
	MissingSkills: "Missing skills",
	Suggestions:   "Suggestions",
	Insights:      "Insights",
}

// Palette holds the colors of one theme.
type Palette struct {
	Score   *color.Color
	Heading *color.Color
	Tag     *color.Color
	Items   map[Region]*color.Color
}

func PaletteFor(theme preferences.Theme) Palette {
	if theme == preferences.Dark {
		return Palette{
			Score:   color.New(color.FgHiCyan, color.Bold),
			Heading: color.New(color.FgHiWhite, color.Bold),
			Tag:     color.New(color.FgBlack, color.BgHiGreen),
			Items: map[Region]*color.Color{
				MissingSkills: color.New(color.FgHiYellow),
				Suggestions:   color.New(color.FgHiBlue),
				Insights:      color.New(color.FgHiMagenta),
			},
		}
	}

	return Palette{
		Score:   color.New(color.FgBlue, color.Bold),
		Heading: color.New(color.FgBlack, color.Bold),
		Tag:     color.New(color.FgWhite, color.BgGreen),
		Items: map[Region]*color.Color{
			MissingSkills: color.New(color.FgRed),
			Suggestions:   color.New(color.FgBlue),
			Insights:      color.New(color.FgMagenta),
		},
	}
}

// Terminal prints a Board. On a TTY it redraws in place on every board change;
// otherwise only Flush writes, once the animations have settled.
type Terminal struct {
	out     io.Writer
	board   *Board
	palette Palette
	live    bool

	// width returns the terminal columns, or a value below 1 when unknown.
	width func() int

	mu sync.Mutex
	// rows drawn by the last frame, soft wraps included
	rows int
}

func NewTerminal(out io.Writer, board *Board, theme preferences.Theme) *Terminal {
	live := false
	width := func() int { return 0 }
	if f, ok := out.(*os.File); ok {
		live = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		width = func() int {
			cols, _, err := readline.GetSize(int(f.Fd()))
			if err != nil {
				return 0
			}
			return cols
		}
	}

	t := &Terminal{
		out:     out,
		board:   board,
		palette: PaletteFor(theme),
		live:    live,
		width:   width,
	}

	board.OnChange(t.changed)

	return t
}

// Live reports whether the terminal animates.
func (t *Terminal) Live() bool { return t.live }

// SetTheme switches the palette used by the next draw.
func (t *Terminal) SetTheme(theme preferences.Theme) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.palette = PaletteFor(theme)
}

// Flush draws the current board. Call it after the renderer settled.
func (t *Terminal) Flush() {
	t.draw()
}

// Release forgets the drawn frame, so the next draw starts below it instead of
// overwriting it.
func (t *Terminal) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = 0
}

func (t *Terminal) changed() {
	if t.live {
		t.draw()
	}
}

func (t *Terminal) draw() {
	view := t.board.Snapshot()

	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	if t.live && t.rows > 0 {
		// move to the start of the previous frame and clear it
		fmt.Fprintf(&b, "\033[%dA\r\033[J", t.rows)
	}

	frame := ""
	if view.Visible {
		frame = Format(view, t.palette)
	}
	b.WriteString(frame)

	fmt.Fprint(t.out, b.String())
	t.rows = rows(frame, t.width())
}

// rows counts the terminal rows the cursor moves down while printing frame.
// A line wider than width wraps onto extra rows. Color sequences take no room.
// With an unknown width every line is one row.
func rows(frame string, width int) int {
	lines := strings.Split(frame, "\n")
	// text after the last newline leaves the cursor on its own row
	lines = lines[:len(lines)-1]

	n := len(lines)
	if width < 1 {
		return n
	}

	for _, line := range lines {
		cols := readline.Runes{}.WidthAll(readline.Runes{}.ColorFilter([]rune(line)))
		if cols > width {
			n += (cols - 1) / width
		}
	}
	return n
}

// Format renders a view as text. Hidden items are left out.
func Format(view View, palette Palette) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s %s\n", palette.Heading.Sprint("Match score:"), palette.Score.Sprint(view.ScoreText()))

	for _, region := range Regions {
		fmt.Fprintf(&b, "\n%s\n", palette.Heading.Sprint(headings[region]))

		texts := view.VisibleTexts(region)
		if len(texts) == 0 {
			continue
		}

		if region == MatchedSkills {
			tags := make([]string, 0, len(texts))
			for _, text := range texts {
				tags = append(tags, palette.Tag.Sprintf(" %s ", text))
			}
			fmt.Fprintf(&b, "  %s\n", strings.Join(tags, " "))
			continue
		}

		itemColor := palette.Items[region]
		for _, text := range texts {
			fmt.Fprintf(&b, "  • %s\n", itemColor.Sprint(text))
		}
	}

	return b.String()
}
