// Package session wires the validation engine, the submission controller and
// a presentation adapter into one page session. Every handler, and every
// timer callback the session schedules, runs under a single mutex.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/goliatone/go-signup/pkg/metrics"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/submission"
	"github.com/goliatone/go-signup/pkg/timer"
	"github.com/goliatone/go-signup/pkg/validation"
)

const (
	// TermsText is shown when the user asks to read the terms.
	TermsText = "Terms and Conditions:\n\n" +
		"1. You must be 18+ years old to create an account.\n" +
		"2. You agree to provide accurate information.\n" +
		"3. You are responsible for maintaining account security.\n" +
		"4. We respect your privacy and will protect your data.\n\n" +
		"(This is a demo - in a real application, this would link to your actual terms page)"
	// LoginNotice is shown when the user follows the sign-in link.
	LoginNotice = "This would redirect to the login page in a real application."
)

// Adapter is the presentation boundary plus the write capability the session
// needs to store raw input before validating it.
type Adapter interface {
	submission.Presenter
	SetField(name model.FieldName, value string)
	SetTermsAccepted(accepted bool)
}

// Option configures a Session.
type Option func(*Session)

// WithScheduler replaces the wall-clock scheduler. The caller is responsible
// for serialising callbacks of a custom scheduler with the session.
func WithScheduler(s timer.Scheduler) Option {
	return func(sess *Session) {
		sess.scheduler = s
	}
}

// WithClock runs timer callbacks on clk while holding the session lock.
func WithClock(clk clock.Clock) Option {
	return func(sess *Session) {
		sess.clock = clk
	}
}

// WithEngine replaces the default validation engine.
func WithEngine(engine *validation.Engine) Option {
	return func(sess *Session) {
		sess.engine = engine
	}
}

// WithLogger attaches a logger to the session and its collaborators.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(sess *Session) {
		if logger != nil {
			sess.logger = logger
		}
	}
}

// WithMetrics records validation and submission counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(sess *Session) {
		sess.metrics = m
	}
}

// WithSubmissionOptions forwards options to the submission controller.
func WithSubmissionOptions(opts ...submission.Option) Option {
	return func(sess *Session) {
		sess.submitOpts = append(sess.submitOpts, opts...)
	}
}

// Session owns one form's engine, controller and adapter.
type Session struct {
	mu         sync.Mutex
	adapter    Adapter
	engine     *validation.Engine
	controller *submission.Controller
	scheduler  timer.Scheduler
	clock      clock.Clock
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
	submitOpts []submission.Option

	// settled is closed whenever the controller is idle.
	settled chan struct{}
}

// New builds a session around adapter.
func New(adapter Adapter, options ...Option) (*Session, error) {
	if adapter == nil {
		return nil, fmt.Errorf("session: adapter is required")
	}

	s := &Session{
		adapter: adapter,
		logger:  zap.NewNop().Sugar(),
		settled: closedChan(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if s.engine == nil {
		s.engine = validation.NewEngine(
			validation.WithLogger(s.logger.Named("validation")),
			validation.WithMetrics(s.metrics),
		)
	}
	if s.scheduler == nil {
		s.scheduler = timer.NewClockScheduler(s.clock, &s.mu)
	}

	opts := []submission.Option{
		submission.WithLogger(s.logger.Named("submission")),
		submission.WithMetrics(s.metrics),
		submission.WithStateObserver(s.observe),
	}
	opts = append(opts, s.submitOpts...)

	controller, err := submission.New(s.engine, adapter, s.scheduler, opts...)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.controller = controller
	return s, nil
}

// HandleInput stores value for name and validates it. A password change also
// revalidates a non-empty confirmation.
func (s *Session) HandleInput(ctx context.Context, name model.FieldName, value string) ([]model.ValidationOutcome, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if !name.Known() {
		return nil, fmt.Errorf("session: %w: %q", model.ErrUnknownField, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.adapter.SetField(name, value)
	outcomes, err := s.engine.ValidateField(name, submission.Snapshot(s.adapter))
	if err != nil {
		return nil, fmt.Errorf("session: validate %s: %w", name, err)
	}
	for _, outcome := range outcomes {
		s.adapter.OnOutcome(outcome)
	}
	return outcomes, nil
}

// HandleTerms records the terms checkbox.
func (s *Session) HandleTerms(ctx context.Context, accepted bool) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapter.SetTermsAccepted(accepted)
	return nil
}

// HandleSubmit forwards a submit request to the controller.
func (s *Session) HandleSubmit(ctx context.Context) (submission.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Submit(ctx)
}

// ShowTerms pushes the terms text as a blocking notice.
func (s *Session) ShowTerms() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapter.ShowBlockingNotice(TermsText)
}

// ShowLogin pushes the sign-in placeholder notice.
func (s *Session) ShowLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapter.ShowBlockingNotice(LoginNotice)
}

// State reports the submission state.
func (s *Session) State() model.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.State()
}

// Outcome returns the last outcome recorded for name since the last reset.
func (s *Session) Outcome(name model.FieldName) (model.ValidationOutcome, bool) {
	return s.engine.LastKnown(name)
}

// Wait blocks until the active submission cycle has returned to idle. It
// returns immediately when nothing is in flight.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	settled := s.settled
	s.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// observe runs inside controller transitions, so the session lock is held.
func (s *Session) observe(state model.SubmissionState) {
	switch state {
	case model.StateSubmitting:
		s.settled = make(chan struct{})
	case model.StateIdle:
		close(s.settled)
	}
	s.logger.Debugw("submission state", "state", state)
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
