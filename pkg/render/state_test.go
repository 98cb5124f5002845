package render_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
)

func TestViewState_OutcomeStyling(t *testing.T) {
	state := render.NewViewState("test", render.Labels{})

	state.OnOutcome(model.ValidationOutcome{Field: model.FieldEmail, Valid: true, Notice: "Email looks good!"})
	state.OnOutcome(model.ValidationOutcome{Field: model.FieldFirstName, Message: "First name must be at least 2 characters"})

	view := state.View()
	email, _ := view.Field(model.FieldEmail)
	want := render.FieldView{Name: model.FieldEmail, Label: "Email Address", Status: render.StatusSuccess, Notice: "Email looks good!"}
	if diff := cmp.Diff(want, email); diff != "" {
		t.Fatalf("email view mismatch (-want +got):\n%s", diff)
	}

	first, _ := view.Field(model.FieldFirstName)
	if first.Status != render.StatusError || first.Error == "" {
		t.Fatalf("expected error styling, got %+v", first)
	}

	// A later failure replaces the success notice.
	state.OnOutcome(model.ValidationOutcome{Field: model.FieldEmail, Message: "Please enter a valid email address"})
	email, _ = state.View().Field(model.FieldEmail)
	if email.Notice != "" || email.Status != render.StatusError {
		t.Fatalf("expected notice cleared on failure, got %+v", email)
	}
}

func TestViewState_StrengthOnlyForValidPassword(t *testing.T) {
	state := render.NewViewState("test", render.Labels{})
	state.SetField(model.FieldPassword, "Abc12345")

	state.OnOutcome(model.ValidationOutcome{
		Field:    model.FieldPassword,
		Valid:    true,
		Strength: &model.Strength{Score: 4, Tier: model.TierMedium},
	})
	pw, _ := state.View().Field(model.FieldPassword)
	want := &render.StrengthView{Score: 4, Tier: model.TierMedium, Label: "Medium strength password"}
	if diff := cmp.Diff(want, pw.Strength); diff != "" {
		t.Fatalf("strength mismatch (-want +got):\n%s", diff)
	}
	if pw.Value != "" || !pw.Secret {
		t.Fatalf("password value must not be exposed in the view")
	}
	if got := state.ReadField(model.FieldPassword); got != "Abc12345" {
		t.Fatalf("raw value should still be readable, got %q", got)
	}

	state.OnOutcome(model.ValidationOutcome{Field: model.FieldPassword, Message: "too short"})
	pw, _ = state.View().Field(model.FieldPassword)
	if pw.Strength != nil {
		t.Fatalf("strength should hide on failure")
	}
}

func TestViewState_ButtonAndPopupFollowState(t *testing.T) {
	state := render.NewViewState("test", render.Labels{})

	cases := []struct {
		state  model.SubmissionState
		button render.ButtonView
		popup  bool
	}{
		{model.StateIdle, render.ButtonView{Label: "Create Account"}, false},
		{model.StateSubmitting, render.ButtonView{Label: "Creating Account...", Disabled: true}, false},
		{model.StateSucceeded, render.ButtonView{Label: "Create Account"}, true},
		{model.StateIdle, render.ButtonView{Label: "Create Account"}, false},
	}
	for _, tc := range cases {
		state.OnSubmissionStateChange(tc.state)
		view := state.View()
		if diff := cmp.Diff(tc.button, view.Button); diff != "" {
			t.Fatalf("%s button mismatch (-want +got):\n%s", tc.state, diff)
		}
		if view.Popup.Visible != tc.popup {
			t.Fatalf("%s popup visible = %v", tc.state, view.Popup.Visible)
		}
	}
}

func TestViewState_ResetAllFields(t *testing.T) {
	state := render.NewViewState("test", render.Labels{})
	state.SetField(model.FieldFirstName, "Ada")
	state.SetTermsAccepted(true)
	state.OnOutcome(model.ValidationOutcome{Field: model.FieldFirstName, Valid: true})

	state.ResetAllFields()

	view := state.View()
	for _, field := range view.Fields {
		if diff := cmp.Diff(render.FieldView{Name: field.Name, Label: field.Label, Secret: field.Secret}, field); diff != "" {
			t.Fatalf("%s not cleared (-want +got):\n%s", field.Name, diff)
		}
	}
	if view.TermsAccepted {
		t.Fatalf("terms should be unchecked after reset")
	}
}

func TestViewState_Notices(t *testing.T) {
	state := render.NewViewState("test", render.Labels{})
	state.ShowBlockingNotice("one")
	state.ShowBlockingNotice("two")

	if diff := cmp.Diff([]string{"one", "two"}, state.View().Notices); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
	if got := state.DismissNotices(); len(got) != 2 {
		t.Fatalf("expected two dismissed notices, got %v", got)
	}
	if len(state.View().Notices) != 0 {
		t.Fatalf("notices should be empty after dismissal")
	}
}

func TestRegistry_RenderJSON(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(render.NewJSONRenderer())
	if err := registry.Register(render.NewJSONRenderer()); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	state := render.NewViewState("test", render.Labels{IdleButton: "Sign up"})
	state.OnOutcome(model.ValidationOutcome{Field: model.FieldPhone, Message: "Please enter a valid phone number"})

	out, contentType, err := registry.Render(context.Background(), "JSON", state.View())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("unexpected content type %q", contentType)
	}

	var decoded struct {
		State  string `json:"state"`
		Button struct {
			Label string `json:"label"`
		} `json:"button"`
		Errors render.ErrorMapping `json:"errors"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.State != "idle" || decoded.Button.Label != "Sign up" {
		t.Fatalf("unexpected payload %s", out)
	}
	if diff := cmp.Diff(map[string][]string{"phone": {"Please enter a valid phone number"}}, decoded.Errors.Fields); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := registry.Render(context.Background(), "xml", state.View()); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}

func TestViewState_ApplyErrors(t *testing.T) {
	state := render.NewViewState("test", render.Labels{})
	state.SetField(model.FieldEmail, "ada@example.com")
	state.OnOutcome(model.ValidationOutcome{Field: model.FieldEmail, Valid: true, Notice: "Email looks good!"})

	state.ApplyErrors(render.MapErrorPayload(map[string][]string{
		"/email":           {"Email is already registered"},
		"#/terms":          {"Terms required"},
		"non_field_errors": {"Try again later"},
	}))

	view := state.View()
	email, _ := view.Field(model.FieldEmail)
	want := render.FieldView{
		Name:   model.FieldEmail,
		Label:  "Email Address",
		Value:  "ada@example.com",
		Status: render.StatusError,
		Error:  "Email is already registered",
	}
	if diff := cmp.Diff(want, email); diff != "" {
		t.Fatalf("email view mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Terms required", "Try again later"}, view.Notices); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}
