package submission_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/submission"
	"github.com/goliatone/go-signup/pkg/timer"
	"github.com/goliatone/go-signup/pkg/validation"
)

type recordingPresenter struct {
	values   map[model.FieldName]string
	terms    bool
	outcomes []model.ValidationOutcome
	states   []model.SubmissionState
	notices  []string
	resets   int
}

func newPresenter(values map[model.FieldName]string, terms bool) *recordingPresenter {
	return &recordingPresenter{values: values, terms: terms}
}

func (p *recordingPresenter) ReadField(name model.FieldName) string { return p.values[name] }
func (p *recordingPresenter) ReadTermsAccepted() bool               { return p.terms }
func (p *recordingPresenter) OnOutcome(o model.ValidationOutcome) {
	p.outcomes = append(p.outcomes, o)
}
func (p *recordingPresenter) OnSubmissionStateChange(s model.SubmissionState) {
	p.states = append(p.states, s)
}
func (p *recordingPresenter) ResetAllFields() {
	p.resets++
	p.values = map[model.FieldName]string{}
	p.terms = false
}
func (p *recordingPresenter) ShowBlockingNotice(msg string) {
	p.notices = append(p.notices, msg)
}

func validValues() map[model.FieldName]string {
	return map[model.FieldName]string{
		model.FieldFirstName:       "Ada",
		model.FieldLastName:        "Lovelace",
		model.FieldEmail:           "ada@example.com",
		model.FieldPassword:        "Abcd123!",
		model.FieldConfirmPassword: "Abcd123!",
	}
}

func newController(t *testing.T, p submission.Presenter, sched timer.Scheduler, opts ...submission.Option) *submission.Controller {
	t.Helper()
	ids := 0
	opts = append([]submission.Option{submission.WithIDGenerator(func() string {
		ids++
		return fmt.Sprintf("cycle-%d", ids)
	})}, opts...)
	c, err := submission.New(validation.NewEngine(), p, sched, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func TestSubmit_FullLifecycle(t *testing.T) {
	p := newPresenter(validValues(), true)
	sched := timer.NewManual()
	c := newController(t, p, sched)

	attempt, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.CycleID != "cycle-1" {
		t.Fatalf("unexpected cycle id %q", attempt.CycleID)
	}
	if len(p.outcomes) != len(model.Fields()) {
		t.Fatalf("expected one outcome per field, got %d", len(p.outcomes))
	}
	if c.State() != model.StateSubmitting {
		t.Fatalf("expected submitting, got %s", c.State())
	}

	sched.Advance(1999 * time.Millisecond)
	if c.State() != model.StateSubmitting || p.resets != 0 {
		t.Fatalf("completed before latency elapsed")
	}

	sched.Advance(time.Millisecond)
	if c.State() != model.StateSucceeded {
		t.Fatalf("expected succeeded, got %s", c.State())
	}
	if p.resets != 1 || len(p.values) != 0 {
		t.Fatalf("expected fields cleared on success")
	}

	sched.Advance(3999 * time.Millisecond)
	if c.State() != model.StateSucceeded {
		t.Fatalf("dismissed too early")
	}
	sched.Advance(time.Millisecond)
	if c.State() != model.StateIdle {
		t.Fatalf("expected idle after dismissal, got %s", c.State())
	}

	want := []model.SubmissionState{model.StateSubmitting, model.StateSucceeded, model.StateIdle}
	if diff := cmp.Diff(want, p.states); diff != "" {
		t.Fatalf("state sequence mismatch (-want +got):\n%s", diff)
	}
	if len(p.notices) != 0 {
		t.Fatalf("unexpected notices %v", p.notices)
	}
}

func TestSubmit_TermsGateBlocksEvenWhenFieldsValid(t *testing.T) {
	p := newPresenter(validValues(), false)
	sched := timer.NewManual()
	c := newController(t, p, sched)

	_, err := c.Submit(context.Background())
	if !errors.Is(err, submission.ErrTermsNotAccepted) {
		t.Fatalf("expected ErrTermsNotAccepted, got %v", err)
	}
	if diff := cmp.Diff([]string{submission.DefaultTermsNotice}, p.notices); diff != "" {
		t.Fatalf("notice mismatch (-want +got):\n%s", diff)
	}
	if c.State() != model.StateIdle || sched.Pending() != 0 || len(p.states) != 0 {
		t.Fatalf("terms gate must not transition")
	}
}

func TestSubmit_TermsGateReportedBeforeFieldErrors(t *testing.T) {
	p := newPresenter(map[model.FieldName]string{}, false)
	c := newController(t, p, timer.NewManual(), submission.WithTermsNotice("terms please"))

	attempt, err := c.Submit(context.Background())
	if !errors.Is(err, submission.ErrTermsNotAccepted) {
		t.Fatalf("expected terms error to win, got %v", err)
	}
	if errors.Is(err, submission.ErrInvalidForm) {
		t.Fatalf("terms error must not be folded into invalid form")
	}
	if attempt.Outcomes.Valid() {
		t.Fatalf("empty fields should still be reported invalid")
	}
	if len(p.outcomes) != len(model.Fields()) {
		t.Fatalf("field feedback should still be emitted, got %d outcomes", len(p.outcomes))
	}
	if diff := cmp.Diff([]string{"terms please"}, p.notices); diff != "" {
		t.Fatalf("notice mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_InvalidFieldsStayIdle(t *testing.T) {
	values := validValues()
	values[model.FieldEmail] = "a@b"
	p := newPresenter(values, true)
	sched := timer.NewManual()
	c := newController(t, p, sched)

	_, err := c.Submit(context.Background())
	if !errors.Is(err, submission.ErrInvalidForm) {
		t.Fatalf("expected ErrInvalidForm, got %v", err)
	}
	if c.State() != model.StateIdle || sched.Pending() != 0 {
		t.Fatalf("invalid form must not transition")
	}
	if len(p.notices) != 0 {
		t.Fatalf("invalid fields are not a blocking notice")
	}
}

func TestSubmit_RejectsReentry(t *testing.T) {
	p := newPresenter(validValues(), true)
	sched := timer.NewManual()
	c := newController(t, p, sched)

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	outcomesBefore := len(p.outcomes)

	if _, err := c.Submit(context.Background()); !errors.Is(err, submission.ErrNotIdle) {
		t.Fatalf("expected ErrNotIdle while submitting, got %v", err)
	}
	if len(p.outcomes) != outcomesBefore {
		t.Fatalf("rejected submit must not re-run validation")
	}

	sched.Advance(submission.DefaultLatency)
	if _, err := c.Submit(context.Background()); !errors.Is(err, submission.ErrNotIdle) {
		t.Fatalf("expected ErrNotIdle while succeeded, got %v", err)
	}
	if len(p.notices) != 0 {
		t.Fatalf("refused submit must not raise a notice, got %v", p.notices)
	}
	if sched.Pending() != 1 {
		t.Fatalf("expected only the dismissal to be pending, got %d", sched.Pending())
	}
}

func TestSubmit_SecondCycleAfterIdle(t *testing.T) {
	p := newPresenter(validValues(), true)
	sched := timer.NewManual()
	c := newController(t, p, sched,
		submission.WithLatency(10*time.Millisecond),
		submission.WithDismissDelay(20*time.Millisecond),
	)

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	sched.RunAll()

	p.values = validValues()
	p.terms = true
	attempt, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if attempt.CycleID != "cycle-2" {
		t.Fatalf("expected new cycle id, got %q", attempt.CycleID)
	}
	if elapsed := sched.RunAll(); elapsed != 60*time.Millisecond {
		t.Fatalf("expected both cycles to finish at 60ms, got %s", elapsed)
	}
	if c.State() != model.StateIdle {
		t.Fatalf("expected idle, got %s", c.State())
	}
}

func TestSubmit_CanceledContext(t *testing.T) {
	p := newPresenter(validValues(), true)
	c := newController(t, p, timer.NewManual())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Submit(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(p.outcomes) != 0 {
		t.Fatalf("canceled submit must not validate")
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	p := newPresenter(nil, false)
	if _, err := submission.New(nil, p, timer.NewManual()); err == nil {
		t.Fatalf("expected error without engine")
	}
	if _, err := submission.New(validation.NewEngine(), nil, timer.NewManual()); err == nil {
		t.Fatalf("expected error without presenter")
	}
	if _, err := submission.New(validation.NewEngine(), p, nil); err == nil {
		t.Fatalf("expected error without scheduler")
	}
}

func TestStateObserver_SeesEveryTransition(t *testing.T) {
	p := newPresenter(validValues(), true)
	sched := timer.NewManual()
	var seen []model.SubmissionState
	c := newController(t, p, sched, submission.WithStateObserver(func(s model.SubmissionState) {
		seen = append(seen, s)
	}))

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sched.RunAll()

	if diff := cmp.Diff(p.states, seen); diff != "" {
		t.Fatalf("observer and presenter disagree (-presenter +observer):\n%s", diff)
	}
}
