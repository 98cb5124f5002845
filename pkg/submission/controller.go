package submission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/goliatone/go-signup/pkg/metrics"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/timer"
	"github.com/goliatone/go-signup/pkg/validation"
)

const (
	// DefaultLatency is the simulated network delay before success.
	DefaultLatency = 2000 * time.Millisecond
	// DefaultDismissDelay is how long the success notice stays visible.
	DefaultDismissDelay = 4000 * time.Millisecond
	// DefaultTermsNotice is the blocking notice shown when terms are unchecked.
	DefaultTermsNotice = "Please accept the Terms and Conditions to continue."
)

const (
	eventSubmit   = "submit"
	eventComplete = "complete"
	eventDismiss  = "dismiss"
)

// Presenter is the presentation boundary the controller reads from and
// reports to.
type Presenter interface {
	ReadField(name model.FieldName) string
	ReadTermsAccepted() bool
	OnOutcome(outcome model.ValidationOutcome)
	OnSubmissionStateChange(state model.SubmissionState)
	ResetAllFields()
	ShowBlockingNotice(message string)
}

// Snapshot reads every field and the terms flag from p in one pass.
func Snapshot(p Presenter) model.FormSnapshot {
	values := make(map[model.FieldName]string)
	for _, name := range model.Fields() {
		values[name] = p.ReadField(name)
	}
	return model.NewSnapshot(values, p.ReadTermsAccepted())
}

// Attempt describes what a submit request evaluated.
type Attempt struct {
	CycleID       string           `json:"cycleId,omitempty"`
	Outcomes      model.OutcomeSet `json:"outcomes"`
	TermsAccepted bool             `json:"termsAccepted"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithLatency overrides the simulated submission delay.
func WithLatency(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.latency = d
		}
	}
}

// WithDismissDelay overrides how long the success notice stays up.
func WithDismissDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.dismissDelay = d
		}
	}
}

// WithTermsNotice overrides the blocking notice text.
func WithTermsNotice(message string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(message) != "" {
			c.termsNotice = message
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records attempts and completions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithIDGenerator replaces the cycle id source.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithStateObserver registers fn to be called after every transition.
func WithStateObserver(fn func(model.SubmissionState)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// Controller drives the idle -> submitting -> succeeded -> idle lifecycle.
// It is not safe for concurrent use; callers serialise access (see session).
type Controller struct {
	engine    *validation.Engine
	presenter Presenter
	scheduler timer.Scheduler
	machine   *fsm.FSM

	latency      time.Duration
	dismissDelay time.Duration
	termsNotice  string
	logger       *zap.SugaredLogger
	metrics      *metrics.Metrics
	newID        func() string
	observers    []func(model.SubmissionState)

	cycle string
}

// New builds a controller in the idle state.
func New(engine *validation.Engine, presenter Presenter, scheduler timer.Scheduler, options ...Option) (*Controller, error) {
	if engine == nil {
		return nil, fmt.Errorf("submission: engine is required")
	}
	if presenter == nil {
		return nil, fmt.Errorf("submission: presenter is required")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("submission: scheduler is required")
	}

	c := &Controller{
		engine:       engine,
		presenter:    presenter,
		scheduler:    scheduler,
		latency:      DefaultLatency,
		dismissDelay: DefaultDismissDelay,
		termsNotice:  DefaultTermsNotice,
		logger:       zap.NewNop().Sugar(),
		newID:        uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	c.machine = fsm.NewFSM(
		string(model.StateIdle),
		fsm.Events{
			{Name: eventSubmit, Src: []string{string(model.StateIdle)}, Dst: string(model.StateSubmitting)},
			{Name: eventComplete, Src: []string{string(model.StateSubmitting)}, Dst: string(model.StateSucceeded)},
			{Name: eventDismiss, Src: []string{string(model.StateSucceeded)}, Dst: string(model.StateIdle)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				c.logger.Debugw("submission transition", "event", e.Event, "from", e.Src, "to", e.Dst, "cycle", c.cycle)
			},
		},
	)

	return c, nil
}

// State reports the current lifecycle state.
func (c *Controller) State() model.SubmissionState {
	return model.SubmissionState(c.machine.Current())
}

// Submit validates every field against a fresh snapshot and, when the terms
// gate and all fields pass, enters submitting and schedules completion.
//
// Field outcomes are reported to the presenter even when the terms gate
// blocks, so the user sees field feedback alongside the notice.
func (c *Controller) Submit(ctx context.Context) (Attempt, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Attempt{}, err
	}
	if state := c.State(); state != model.StateIdle {
		c.metrics.ObserveAttempt(metrics.ResultBusy)
		return Attempt{}, fmt.Errorf("%w: state is %s", ErrNotIdle, state)
	}

	snap := Snapshot(c.presenter)
	outcomes := c.engine.ValidateAll(snap)
	for _, outcome := range outcomes {
		c.presenter.OnOutcome(outcome)
	}

	attempt := Attempt{Outcomes: outcomes, TermsAccepted: snap.TermsAccepted}

	if !snap.TermsAccepted {
		c.metrics.ObserveAttempt(metrics.ResultTermsRequired)
		c.logger.Infow("submit blocked: terms not accepted", "fieldsValid", outcomes.Valid())
		c.presenter.ShowBlockingNotice(c.termsNotice)
		return attempt, ErrTermsNotAccepted
	}

	if failed := outcomes.Failed(); len(failed) > 0 {
		c.metrics.ObserveAttempt(metrics.ResultInvalid)
		names := make([]string, len(failed))
		for i, name := range failed {
			names[i] = string(name)
		}
		c.logger.Infow("submit blocked: invalid fields", "fields", names)
		return attempt, fmt.Errorf("%w: %s", ErrInvalidForm, strings.Join(names, ", "))
	}

	id := c.newID()
	c.cycle = id
	if err := c.machine.Event(ctx, eventSubmit); err != nil {
		return attempt, fmt.Errorf("submission: submit: %w", err)
	}
	c.metrics.ObserveAttempt(metrics.ResultAccepted)
	attempt.CycleID = id

	c.notify(model.StateSubmitting)
	c.scheduler.ScheduleAfter(c.latency, func() { c.complete(id) })
	return attempt, nil
}

func (c *Controller) complete(id string) {
	if !c.current(id, model.StateSubmitting) {
		return
	}
	if err := c.machine.Event(context.Background(), eventComplete); err != nil {
		c.logger.Errorw("submission complete failed", "cycle", id, "error", err)
		return
	}

	c.presenter.ResetAllFields()
	c.engine.Reset()
	c.metrics.IncrementCompleted()
	c.notify(model.StateSucceeded)

	c.scheduler.ScheduleAfter(c.dismissDelay, func() { c.dismiss(id) })
}

func (c *Controller) dismiss(id string) {
	if !c.current(id, model.StateSucceeded) {
		return
	}
	if err := c.machine.Event(context.Background(), eventDismiss); err != nil {
		c.logger.Errorw("submission dismiss failed", "cycle", id, "error", err)
		return
	}
	c.cycle = ""
	c.notify(model.StateIdle)
}

// current ignores callbacks belonging to a cycle that is no longer active.
func (c *Controller) current(id string, want model.SubmissionState) bool {
	if id != c.cycle || c.State() != want {
		c.logger.Debugw("stale submission callback ignored", "cycle", id, "active", c.cycle, "state", c.State())
		return false
	}
	return true
}

func (c *Controller) notify(state model.SubmissionState) {
	c.presenter.OnSubmissionStateChange(state)
	for _, observer := range c.observers {
		observer(state)
	}
}
