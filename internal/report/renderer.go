package report

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/matcher"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	defaultDuration = time.Second
	defaultSteps    = 60
	defaultStagger  = 100 * time.Millisecond
)

type Option func(*Renderer)

// WithTiming overrides the score animation window, the number of counter
// increments and the per-index reveal delay.
func WithTiming(duration time.Duration, steps int, stagger time.Duration) Option {
	return func(r *Renderer) {
		r.duration = duration
		r.steps = steps
		r.stagger = stagger
	}
}

// WithoutAnimation shows the final score and every item at once.
func WithoutAnimation() Option {
	return WithTiming(0, 1, 0)
}

// Renderer draws analysis results on a Display. Each Render invalidates the
// animations of the previous one, so only the latest result ever reaches the
// display.
type Renderer struct {
	display Display
	logger  *zap.Logger

	duration time.Duration
	steps    int
	stagger  time.Duration

	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(display Display, logger *zap.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Renderer{
		display:  display,
		logger:   logger,
		duration: defaultDuration,
		steps:    defaultSteps,
		stagger:  defaultStagger,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.steps <= 0 {
		r.steps = 1
	}

	return r
}

// Render replaces the report with result and starts its reveal animations.
func (r *Renderer) Render(result *matcher.AnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.invalidate()
	r.token++
	token := r.token

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, region := range Regions {
		r.display.Clear(region)
	}
	r.display.SetScore(0)

	r.wg.Add(1)
	go r.countUp(ctx, token, result.MatchScore)

	r.populate(ctx, token, MatchedSkills, result.MatchedSkills)
	r.populate(ctx, token, MissingSkills, result.MissingSkills)
	r.populate(ctx, token, Suggestions, result.Suggestions)
	r.populate(ctx, token, Insights, result.Insights)

	r.display.Show()
	r.display.ScrollIntoView()

	r.logger.Debug("rendering result",
		zap.Uint64("render", token),
		zap.Int("match_score", result.MatchScore),
		zap.Int("matched_skills", len(result.MatchedSkills)),
	)
}

// Hide stops running animations and hides the report.
func (r *Renderer) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.invalidate()
	r.token++
	r.display.Hide()
}

// Wait blocks until every animation started so far has finished or was
// invalidated.
func (r *Renderer) Wait() {
	r.wg.Wait()
}

// invalidate must be called with r.mu held.
func (r *Renderer) invalidate() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// apply runs fn against the display only if token is still the latest render.
func (r *Renderer) apply(token uint64, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token != r.token {
		return false
	}
	fn()
	return true
}

// countUp moves the score from 0 to target in fixed increments. It stops on
// reaching the target rather than after a number of ticks.
func (r *Renderer) countUp(ctx context.Context, token uint64, target int) {
	defer r.wg.Done()

	interval := r.duration / time.Duration(r.steps)
	increment := float64(target) / float64(r.steps)
	goal := float64(target)
	current := 0.0

	for {
		if err := utils.WaitFor(ctx, interval); err != nil {
			return
		}

		current = math.Min(current+increment, goal)
		shown := int(math.Round(current))
		if current >= goal {
			shown = target
		}

		if !r.apply(token, func() { r.display.SetScore(shown) }) {
			return
		}

		if current >= goal {
			return
		}
	}
}

// populate adds the items of a region hidden and reveals them in order, item i
// at i times the stagger delay.
func (r *Renderer) populate(ctx context.Context, token uint64, region Region, items []string) {
	if len(items) == 0 {
		return
	}

	indexes := make([]int, 0, len(items))
	for _, item := range items {
		indexes = append(indexes, r.display.Append(region, item))
	}

	start := time.Now()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		for i, index := range indexes {
			deadline := start.Add(time.Duration(i) * r.stagger)
			if err := utils.WaitFor(ctx, time.Until(deadline)); err != nil {
				return
			}

			if !r.apply(token, func() { r.display.Reveal(region, index) }) {
				return
			}
		}
	}()
}
