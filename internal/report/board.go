package report

import (
	"fmt"
	"sync"
)

// Region is an area of the report that holds a list of items.
type Region string

const (
	MatchedSkills Region = "matched_skills"
	MissingSkills Region = "missing_skills"
	Suggestions   Region = "suggestions"
	Insights      Region = "insights"
)

// Regions lists every list region in display order.
var Regions = []Region{MatchedSkills, MissingSkills, Suggestions, Insights}

// Display is the surface a Renderer draws on.
type Display interface {
	SetScore(score int)
	Clear(region Region)
	// Append adds a hidden item and returns its index in the region.
	Append(region Region, text string) int
	Reveal(region Region, index int)
	Show()
	Hide()
	ScrollIntoView()
}

type Item struct {
	Text    string
	Visible bool
}

// View is a copy of the board contents.
type View struct {
	Score    int
	Visible  bool
	Scrolled int
	Regions  map[Region][]Item
}

func (v View) ScoreText() string {
	return fmt.Sprintf("%d%%", v.Score)
}

// VisibleTexts returns the texts of the revealed items of a region, in order.
func (v View) VisibleTexts(region Region) []string {
	texts := make([]string, 0, len(v.Regions[region]))
	for _, item := range v.Regions[region] {
		if item.Visible {
			texts = append(texts, item.Text)
		}
	}
	return texts
}

// Board is an in-memory Display. Observers registered with OnChange are called
// after every mutation.
type Board struct {
	mu       sync.Mutex
	score    int
	visible  bool
	scrolled int
	regions  map[Region][]Item
	onChange func()
}

func NewBoard() *Board {
	return &Board{regions: make(map[Region][]Item)}
}

func (b *Board) OnChange(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *Board) SetScore(score int) {
	b.update(func() { b.score = score })
}

func (b *Board) Clear(region Region) {
	b.update(func() { b.regions[region] = nil })
}

func (b *Board) Append(region Region, text string) int {
	var index int
	b.update(func() {
		index = len(b.regions[region])
		b.regions[region] = append(b.regions[region], Item{Text: text})
	})
	return index
}

func (b *Board) Reveal(region Region, index int) {
	b.update(func() {
		items := b.regions[region]
		if index >= 0 && index < len(items) {
			items[index].Visible = true
		}
	})
}

func (b *Board) Show() {
	b.update(func() { b.visible = true })
}

func (b *Board) Hide() {
	b.update(func() { b.visible = false })
}

func (b *Board) ScrollIntoView() {
	b.update(func() { b.scrolled++ })
}

func (b *Board) Snapshot() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	regions := make(map[Region][]Item, len(b.regions))
	for region, items := range b.regions {
		regions[region] = append([]Item(nil), items...)
	}

	return View{
		Score:    b.score,
		Visible:  b.visible,
		Scrolled: b.scrolled,
		Regions:  regions,
	}
}

func (b *Board) update(fn func()) {
	b.mu.Lock()
	fn()
	onChange := b.onChange
	b.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}
