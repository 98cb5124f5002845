// Package tui drives the signup form from a terminal: one prompt per field,
// re-prompting until the field validates, then the terms and submit steps.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/submission"
)

// Name is the adapter identifier.
const Name = "tui"

// Handler is the slice of the session the prompt loop drives.
type Handler interface {
	HandleInput(ctx context.Context, name model.FieldName, value string) ([]model.ValidationOutcome, error)
	HandleTerms(ctx context.Context, accepted bool) error
	HandleSubmit(ctx context.Context) (submission.Attempt, error)
	ShowTerms()
	Outcome(name model.FieldName) (model.ValidationOutcome, bool)
}

// Renderer is a render.Adapter that echoes presentation changes to the
// terminal. Construct it, hand it to session.New, then call Run.
type Renderer struct {
	*render.ViewState

	driver PromptDriver
	out    io.Writer
	labels render.Labels
	theme  Theme
}

var _ render.Adapter = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, stdout).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{theme: DefaultTheme()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	r.ViewState = render.NewViewState(Name, r.labels)
	r.labels = r.ViewState.Labels()
	return r, nil
}

// ShowBlockingNotice prints message. Terminal notices are dismissed as soon
// as they are printed.
func (r *Renderer) ShowBlockingNotice(message string) {
	r.ViewState.ShowBlockingNotice(message)
	r.ViewState.DismissNotices()
	r.info(context.Background(), message)
}

// OnSubmissionStateChange updates the view and reports progress.
func (r *Renderer) OnSubmissionStateChange(state model.SubmissionState) {
	r.ViewState.OnSubmissionStateChange(state)
	switch state {
	case model.StateSubmitting:
		r.info(context.Background(), r.labels.BusyButton)
	case model.StateSucceeded:
		r.info(context.Background(), r.theme.InfoPrefix+r.labels.SuccessNotice)
	}
}

// Run prompts for every field, the terms checkbox and the final submit. It
// returns once a submission has been accepted; callers wait on the session
// for the cycle to finish.
func (r *Renderer) Run(ctx context.Context, h Handler) (submission.Attempt, error) {
	if ctx == nil {
		return submission.Attempt{}, errors.New("tui: context is required")
	}
	if h == nil {
		return submission.Attempt{}, errors.New("tui: handler is required")
	}

	for _, name := range model.Fields() {
		if err := r.promptField(ctx, h, name); err != nil {
			return submission.Attempt{}, err
		}
	}
	if err := r.promptTerms(ctx, h); err != nil {
		return submission.Attempt{}, err
	}

	for {
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: r.labels.IdleButton + "?", Default: true})
		if err != nil {
			return submission.Attempt{}, err
		}
		if !ok {
			return submission.Attempt{}, ErrDeclined
		}

		attempt, err := h.HandleSubmit(ctx)
		switch {
		case err == nil:
			return attempt, nil
		case errors.Is(err, submission.ErrTermsNotAccepted):
			if err := r.reportFailures(ctx, attempt.Outcomes); err != nil {
				return attempt, err
			}
			if err := r.promptTerms(ctx, h); err != nil {
				return attempt, err
			}
		case errors.Is(err, submission.ErrInvalidForm):
			if err := r.reportFailures(ctx, attempt.Outcomes); err != nil {
				return attempt, err
			}
			for _, name := range attempt.Outcomes.Failed() {
				if err := r.promptField(ctx, h, name); err != nil {
					return attempt, err
				}
			}
		default:
			return attempt, err
		}
	}
}

func (r *Renderer) promptField(ctx context.Context, h Handler, name model.FieldName) error {
	cfg := InputConfig{Message: r.theme.PromptPrefix + render.FieldLabel(name)}
	secret := render.FieldInputType(name) == "password"

	for {
		var (
			response string
			err      error
		)
		if secret {
			response, err = r.driver.Password(ctx, cfg)
		} else {
			cfg.Default = r.ReadField(name)
			response, err = r.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}

		outcomes, err := h.HandleInput(ctx, name, response)
		if err != nil {
			return err
		}
		own, ok := findOutcome(outcomes, name)
		if !ok {
			return fmt.Errorf("tui: no outcome reported for %s", name)
		}
		if !own.Valid {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+own.Message); err != nil {
				return err
			}
			continue
		}
		if own.Notice != "" {
			if err := r.driver.Info(ctx, r.theme.InfoPrefix+own.Notice); err != nil {
				return err
			}
		}
		if own.Strength != nil {
			if err := r.driver.Info(ctx, own.Strength.Tier.Label()); err != nil {
				return err
			}
		}
		if name == model.FieldPassword {
			return r.recheckConfirmation(ctx, h)
		}
		return nil
	}
}

// recheckConfirmation re-prompts a confirmation that a password change has
// invalidated.
func (r *Renderer) recheckConfirmation(ctx context.Context, h Handler) error {
	last, ok := h.Outcome(model.FieldConfirmPassword)
	if !ok || last.Valid {
		return nil
	}
	if err := r.driver.Info(ctx, r.theme.ErrorPrefix+last.Message); err != nil {
		return err
	}
	return r.promptField(ctx, h, model.FieldConfirmPassword)
}

func (r *Renderer) promptTerms(ctx context.Context, h Handler) error {
	read, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Read the Terms and Conditions?"})
	if err != nil {
		return err
	}
	if read {
		h.ShowTerms()
	}
	accepted, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "I agree to the Terms and Conditions"})
	if err != nil {
		return err
	}
	return h.HandleTerms(ctx, accepted)
}

func (r *Renderer) reportFailures(ctx context.Context, outcomes model.OutcomeSet) error {
	for _, outcome := range outcomes {
		if outcome.Valid {
			continue
		}
		line := fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, render.FieldLabel(outcome.Field), outcome.Message)
		if err := r.driver.Info(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, msg)
}

func findOutcome(outcomes []model.ValidationOutcome, name model.FieldName) (model.ValidationOutcome, bool) {
	for _, outcome := range outcomes {
		if outcome.Field == name {
			return outcome, true
		}
	}
	return model.ValidationOutcome{}, false
}
