package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-signup/pkg/model"
)

// Attempt results recorded by ObserveAttempt.
const (
	ResultAccepted      = "accepted"
	ResultTermsRequired = "terms_required"
	ResultInvalid       = "invalid"
	ResultBusy          = "busy"
)

// Metrics counts validation outcomes and submission attempts for a session.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FieldValidations     *prometheus.CounterVec
	SubmitAttempts       *prometheus.CounterVec
	SubmissionsCompleted prometheus.Counter
}

// New registers the signup metrics on reg. Passing nil creates unregistered
// collectors, which is handy for tests that only read values back.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FieldValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_field_validations_total",
			Help: "Field rule evaluations by field and result",
		}, []string{"field", "valid"}),
		SubmitAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signup_submit_attempts_total",
			Help: "Submit requests by result",
		}, []string{"result"}),
		SubmissionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "signup_submissions_completed_total",
			Help: "Simulated submissions that reached the succeeded state",
		}),
	}
}

// ObserveOutcome records one field evaluation.
func (m *Metrics) ObserveOutcome(outcome model.ValidationOutcome) {
	if m == nil {
		return
	}
	m.FieldValidations.WithLabelValues(string(outcome.Field), strconv.FormatBool(outcome.Valid)).Inc()
}

// ObserveAttempt records a submit request result.
func (m *Metrics) ObserveAttempt(result string) {
	if m == nil {
		return
	}
	m.SubmitAttempts.WithLabelValues(result).Inc()
}

// IncrementCompleted records a submission entering succeeded.
func (m *Metrics) IncrementCompleted() {
	if m == nil {
		return
	}
	m.SubmissionsCompleted.Inc()
}
