package render

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-signup/pkg/model"
)

// FieldStatus mirrors the error/success styling a field carries.
type FieldStatus string

const (
	StatusNone    FieldStatus = ""
	StatusError   FieldStatus = "error"
	StatusSuccess FieldStatus = "success"
)

const (
	DefaultIdleLabel     = "Create Account"
	DefaultBusyLabel     = "Creating Account..."
	DefaultSuccessNotice = "Account created successfully!"
)

// Labels are the user-facing strings the view state shows for the submit
// button and the success popup.
type Labels struct {
	IdleButton    string `json:"idleButton" yaml:"idleButton"`
	BusyButton    string `json:"busyButton" yaml:"busyButton"`
	SuccessNotice string `json:"successNotice" yaml:"successNotice"`
}

// DefaultLabels returns the stock labels.
func DefaultLabels() Labels {
	return Labels{
		IdleButton:    DefaultIdleLabel,
		BusyButton:    DefaultBusyLabel,
		SuccessNotice: DefaultSuccessNotice,
	}
}

func (l Labels) withDefaults() Labels {
	def := DefaultLabels()
	if strings.TrimSpace(l.IdleButton) == "" {
		l.IdleButton = def.IdleButton
	}
	if strings.TrimSpace(l.BusyButton) == "" {
		l.BusyButton = def.BusyButton
	}
	if strings.TrimSpace(l.SuccessNotice) == "" {
		l.SuccessNotice = def.SuccessNotice
	}
	return l
}

// StrengthView is the strength indicator shown under the password field.
type StrengthView struct {
	Score int                `json:"score"`
	Tier  model.StrengthTier `json:"tier"`
	Label string             `json:"label"`
}

// FieldView is the rendered state of one field.
type FieldView struct {
	Name     model.FieldName `json:"name"`
	Label    string          `json:"label"`
	Value    string          `json:"value,omitempty"`
	Secret   bool            `json:"secret,omitempty"`
	Status   FieldStatus     `json:"status,omitempty"`
	Error    string          `json:"error,omitempty"`
	Notice   string          `json:"notice,omitempty"`
	Strength *StrengthView   `json:"strength,omitempty"`
}

// ButtonView is the submit button.
type ButtonView struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// PopupView is the success popup.
type PopupView struct {
	Visible bool   `json:"visible"`
	Message string `json:"message,omitempty"`
}

// View is an immutable copy of a ViewState suitable for rendering.
type View struct {
	State         model.SubmissionState `json:"state"`
	Fields        []FieldView           `json:"fields"`
	TermsAccepted bool                  `json:"termsAccepted"`
	Button        ButtonView            `json:"button"`
	Popup         PopupView             `json:"popup"`
	Notices       []string              `json:"notices,omitempty"`
}

// Field returns the view of name.
func (v View) Field(name model.FieldName) (FieldView, bool) {
	for _, field := range v.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldView{}, false
}

type fieldState struct {
	value    string
	status   FieldStatus
	message  string
	notice   string
	strength *StrengthView
}

// ViewState is an in-memory Adapter. Renderers and prompt drivers embed it
// and draw from View.
type ViewState struct {
	mu      sync.RWMutex
	name    string
	labels  Labels
	state   model.SubmissionState
	fields  map[model.FieldName]*fieldState
	terms   bool
	notices []string
}

var _ Adapter = (*ViewState)(nil)

// NewViewState returns an empty, idle view state.
func NewViewState(name string, labels Labels) *ViewState {
	s := &ViewState{
		name:   name,
		labels: labels.withDefaults(),
		state:  model.StateIdle,
		fields: make(map[model.FieldName]*fieldState, len(model.Fields())),
	}
	for _, field := range model.Fields() {
		s.fields[field] = &fieldState{}
	}
	return s
}

// Name implements Adapter.
func (s *ViewState) Name() string {
	return s.name
}

// Labels returns the labels in use.
func (s *ViewState) Labels() Labels {
	return s.labels
}

// ReadField implements Adapter.
func (s *ViewState) ReadField(name model.FieldName) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if field, ok := s.fields[name]; ok {
		return field.value
	}
	return ""
}

// ReadTermsAccepted implements Adapter.
func (s *ViewState) ReadTermsAccepted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terms
}

// SetField implements Adapter. Unknown names are ignored.
func (s *ViewState) SetField(name model.FieldName, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if field, ok := s.fields[name]; ok {
		field.value = value
	}
}

// SetTermsAccepted implements Adapter.
func (s *ViewState) SetTermsAccepted(accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = accepted
}

// OnOutcome applies the error or success styling for one field. A valid
// password shows its strength; anything else hides the indicator.
func (s *ViewState) OnOutcome(outcome model.ValidationOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, ok := s.fields[outcome.Field]
	if !ok {
		return
	}
	if outcome.Valid {
		field.status = StatusSuccess
		field.message = ""
		field.notice = outcome.Notice
	} else {
		field.status = StatusError
		field.message = outcome.Message
		field.notice = ""
	}

	if outcome.Field != model.FieldPassword {
		return
	}
	if outcome.Valid && outcome.Strength != nil {
		field.strength = &StrengthView{
			Score: outcome.Strength.Score,
			Tier:  outcome.Strength.Tier,
			Label: outcome.Strength.Tier.Label(),
		}
	} else {
		field.strength = nil
	}
}

// OnSubmissionStateChange updates the button and popup.
func (s *ViewState) OnSubmissionStateChange(state model.SubmissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// ResetAllFields clears values, styling, messages, the strength indicator and
// the terms checkbox.
func (s *ViewState) ResetAllFields() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, field := range s.fields {
		*field = fieldState{}
	}
	s.terms = false
}

// ShowBlockingNotice queues message until DismissNotices is called.
func (s *ViewState) ShowBlockingNotice(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, message)
}

// ApplyErrors shows externally produced feedback. Field messages become
// inline errors; the rest, terms included, become blocking notices.
func (s *ViewState) ApplyErrors(mapping ErrorMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(mapping.Fields))
	for key := range mapping.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var extras []string
	for _, key := range keys {
		messages := normalizeMessages(mapping.Fields[key])
		name, err := model.ParseFieldName(key)
		if err != nil {
			extras = append(extras, messages...)
			continue
		}
		if len(messages) == 0 {
			continue
		}
		*s.fields[name] = fieldState{
			value:   s.fields[name].value,
			status:  StatusError,
			message: strings.Join(messages, " "),
		}
	}
	extras = append(extras, mapping.Form...)
	s.notices = MergeFormErrors(s.notices, extras...)
}

// DismissNotices clears queued notices and returns them.
func (s *ViewState) DismissNotices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := s.notices
	s.notices = nil
	return notices
}

// View copies the current state. Secret fields never carry their value.
func (s *ViewState) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := View{
		State:         s.state,
		Fields:        make([]FieldView, 0, len(s.fields)),
		TermsAccepted: s.terms,
		Button:        ButtonView{Label: s.labels.IdleButton},
	}
	for _, name := range model.Fields() {
		field := s.fields[name]
		fv := FieldView{
			Name:   name,
			Label:  FieldLabel(name),
			Value:  field.value,
			Secret: isSecret(name),
			Status: field.status,
			Error:  field.message,
			Notice: field.notice,
		}
		if fv.Secret {
			fv.Value = ""
		}
		if field.strength != nil {
			copied := *field.strength
			fv.Strength = &copied
		}
		view.Fields = append(view.Fields, fv)
	}

	switch s.state {
	case model.StateSubmitting:
		view.Button = ButtonView{Label: s.labels.BusyButton, Disabled: true}
	case model.StateSucceeded:
		view.Popup = PopupView{Visible: true, Message: s.labels.SuccessNotice}
	}
	if len(s.notices) > 0 {
		view.Notices = append([]string(nil), s.notices...)
	}
	return view
}

func isSecret(name model.FieldName) bool {
	return FieldInputType(name) == "password"
}
