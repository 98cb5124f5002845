package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/rules"
	"github.com/goliatone/go-signup/pkg/session"
	"github.com/goliatone/go-signup/pkg/submission"
	"github.com/goliatone/go-signup/pkg/timer"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	confirm      []bool
	infoMessages []string
	inputPos     int
	passPos      int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newRun(t *testing.T, driver *stubDriver) (*Renderer, *session.Session, *timer.Manual) {
	t.Helper()
	r, err := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "ok: ", ErrorPrefix: "err: "}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	sched := timer.NewManual()
	sess, err := session.New(r, session.WithScheduler(sched))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return r, sess, sched
}

func TestRun_RepromptsInvalidFieldThenSubmits(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"A", "Ada", "Lovelace", "ada@example.com", ""},
		passwords: []string{"Abcd123!", "Abcd123!"},
		confirm:   []bool{false, true, true},
	}
	r, sess, sched := newRun(t, driver)

	attempt, err := r.Run(context.Background(), sess)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if attempt.CycleID == "" {
		t.Fatalf("expected an accepted attempt")
	}
	sched.RunAll()

	want := []string{
		"err: " + rules.MessageFirstName,
		"ok: " + rules.NoticeEmail,
		"Strong password!",
		"Creating Account...",
		"ok: Account created successfully!",
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if sess.State() != model.StateIdle {
		t.Fatalf("expected idle after the cycle, got %s", sess.State())
	}
	if r.ReadField(model.FieldFirstName) != "" {
		t.Fatalf("expected fields reset after success")
	}
}

func TestRun_TermsGateAsksAgain(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "Lovelace", "ada@example.com", "+15551234"},
		passwords: []string{"abcdefgh", "abcdefgh"},
		// read? no, agree? no, submit? yes -> blocked; read? yes, agree? yes, submit? yes
		confirm: []bool{false, false, true, true, true, true},
	}
	r, sess, _ := newRun(t, driver)

	if _, err := r.Run(context.Background(), sess); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{
		"ok: " + rules.NoticeEmail,
		"Weak password",
		submission.DefaultTermsNotice,
		session.TermsText,
		"Creating Account...",
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if sess.State() != model.StateSubmitting {
		t.Fatalf("expected submitting, got %s", sess.State())
	}
}

func TestRun_DeclineSubmit(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "Lovelace", "ada@example.com", ""},
		passwords: []string{"abcdefgh", "abcdefgh"},
		confirm:   []bool{false, true, false},
	}
	r, sess, _ := newRun(t, driver)

	if _, err := r.Run(context.Background(), sess); !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if sess.State() != model.StateIdle {
		t.Fatalf("declined submit must stay idle")
	}
}

func TestRun_PropagatesDriverErrors(t *testing.T) {
	driver := &stubDriver{}
	r, sess, _ := newRun(t, driver)

	if _, err := r.Run(context.Background(), sess); err == nil {
		t.Fatalf("expected error when the driver runs out of input")
	}
}

func TestPromptField_PasswordChangeRepromptsConfirmation(t *testing.T) {
	driver := &stubDriver{passwords: []string{"Zyxw987!", "Zyxw987!"}}
	r, sess, _ := newRun(t, driver)
	ctx := context.Background()

	if _, err := sess.HandleInput(ctx, model.FieldPassword, "Abcd123!"); err != nil {
		t.Fatalf("seed password: %v", err)
	}
	if _, err := sess.HandleInput(ctx, model.FieldConfirmPassword, "Abcd123!"); err != nil {
		t.Fatalf("seed confirmation: %v", err)
	}

	if err := r.promptField(ctx, sess, model.FieldPassword); err != nil {
		t.Fatalf("prompt password: %v", err)
	}

	want := []string{"Strong password!", "err: " + rules.MessageConfirmPassword}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if last, ok := sess.Outcome(model.FieldConfirmPassword); !ok || !last.Valid {
		t.Fatalf("expected the re-entered confirmation to pass, got %+v", last)
	}
	if r.ReadField(model.FieldConfirmPassword) != "Zyxw987!" {
		t.Fatalf("confirmation not updated")
	}
}
