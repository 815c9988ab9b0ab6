package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/matcher"
	"github.com/spigell/resume-matcher/internal/validation"
)

var ErrBusy = errors.New("an analysis is already in progress")

const (
	resumeRequiredMsg = "Please provide your resume text"
	jobRequiredMsg    = "Please provide the job description"
)

// Field is an input whose text is submitted and which can show a field error.
type Field interface {
	Text() string
	Flag(err error)
}

type Scorer interface {
	Analyze(ctx context.Context, request matcher.AnalysisRequest) (*matcher.AnalysisResult, error)
}

// Presenter shows analysis results.
type Presenter interface {
	Hide()
	Render(result *matcher.AnalysisResult)
}

// Notifier surfaces an analysis failure to the operator. It may block until the
// operator acknowledges it.
type Notifier interface {
	Notify(message string)
}

// Deps aggregates the collaborators of an Orchestrator.
type Deps struct {
	Resume    Field
	Job       Field
	Scorer    Scorer
	Presenter Presenter
	Notifier  Notifier
	Logger    *zap.Logger
	// OnBusy, when set, is called with true when a submission starts and with
	// false when it ends. Views use it to toggle the trigger control.
	OnBusy func(busy bool)
}

// Orchestrator submits the two fields for scoring. At most one submission is in
// flight at a time.
type Orchestrator struct {
	deps Deps

	mu   sync.Mutex
	busy bool
}

func New(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Orchestrator{deps: deps}
}

// Busy reports whether a submission is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Submit validates both fields, sends them for scoring and renders the result.
// Empty fields are flagged together and nothing is sent. A scoring failure is
// passed to the Notifier and returned.
func (o *Orchestrator) Submit(ctx context.Context) error {
	request := matcher.AnalysisRequest{
		ResumeText: strings.TrimSpace(o.deps.Resume.Text()),
		JobText:    strings.TrimSpace(o.deps.Job.Text()),
	}

	if err := o.check(request); err != nil {
		return err
	}

	release, err := o.acquire()
	if err != nil {
		return err
	}
	defer release()

	o.deps.Presenter.Hide()

	o.deps.Logger.Info("submitting analysis",
		zap.Int("resume_length", len(request.ResumeText)),
		zap.Int("job_length", len(request.JobText)),
	)

	result, err := o.deps.Scorer.Analyze(ctx, request)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var contractErr *matcher.ContractError
		if errors.As(err, &contractErr) {
			fields = append(fields, zap.String("detail", contractErr.Detail()))
		}
		o.deps.Logger.Error("analysis failed", fields...)

		o.deps.Notifier.Notify(err.Error())
		return err
	}

	o.deps.Logger.Info("analysis completed", zap.Int("match_score", result.MatchScore))
	o.deps.Presenter.Render(result)

	return nil
}

func (o *Orchestrator) check(request matcher.AnalysisRequest) error {
	var errs []error

	o.deps.Resume.Flag(nil)
	if !validation.NonEmpty(request.ResumeText) {
		err := &validation.Error{Kind: validation.EmptyField, Message: resumeRequiredMsg}
		o.deps.Resume.Flag(err)
		errs = append(errs, err)
	}

	o.deps.Job.Flag(nil)
	if !validation.NonEmpty(request.JobText) {
		err := &validation.Error{Kind: validation.EmptyField, Message: jobRequiredMsg}
		o.deps.Job.Flag(err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// acquire takes the busy flag. The returned func releases it and must be
// deferred.
func (o *Orchestrator) acquire() (func(), error) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.busy = true
	o.mu.Unlock()

	if o.deps.OnBusy != nil {
		o.deps.OnBusy(true)
	}

	return func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()

		if o.deps.OnBusy != nil {
			o.deps.OnBusy(false)
		}
	}, nil
}
