package validation

import (
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-signup/pkg/metrics"
	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/rules"
	"github.com/goliatone/go-signup/pkg/strength"
)

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the default rule set.
func WithRules(set rules.Set) Option {
	return func(e *Engine) {
		e.rules = set
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records every produced outcome.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Engine evaluates field rules and remembers the last outcome per field.
type Engine struct {
	rules   rules.Set
	scorer  func(password string) model.Strength
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	lastKnown map[model.FieldName]model.ValidationOutcome
}

// NewEngine builds an engine with the default signup rules and scorer.
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		rules:     rules.Default(),
		scorer:    strength.Evaluate,
		logger:    zap.NewNop().Sugar(),
		lastKnown: make(map[model.FieldName]model.ValidationOutcome),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// ValidateField evaluates name against snap. Evaluating the password also
// re-evaluates confirmPassword when it holds a value, so the returned slice
// has one or two outcomes.
func (e *Engine) ValidateField(name model.FieldName, snap model.FormSnapshot) ([]model.ValidationOutcome, error) {
	snap = snap.Clone()

	outcome, err := e.evaluate(name, snap)
	if err != nil {
		return nil, err
	}
	outcomes := []model.ValidationOutcome{outcome}

	if name == model.FieldPassword && snap.Value(model.FieldConfirmPassword) != "" {
		cascaded, err := e.evaluate(model.FieldConfirmPassword, snap)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, cascaded)
	}

	e.remember(outcomes...)
	return outcomes, nil
}

// ValidateAll evaluates every field, in fixed order, against one copy of snap.
// Empty values are evaluated too; the set always has one outcome per field.
func (e *Engine) ValidateAll(snap model.FormSnapshot) model.OutcomeSet {
	snap = snap.Clone()

	fields := model.Fields()
	set := make(model.OutcomeSet, 0, len(fields))
	for _, name := range fields {
		outcome, err := e.evaluate(name, snap)
		if err != nil {
			// A rule set missing a field fails that field closed.
			e.logger.Warnw("validation rule missing", "field", name, "error", err)
			outcome = model.ValidationOutcome{Field: name, Message: err.Error()}
		}
		set = append(set, outcome)
	}

	e.remember(set...)
	return set
}

// LastKnown returns the most recent outcome produced for name.
func (e *Engine) LastKnown(name model.FieldName) (model.ValidationOutcome, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	outcome, ok := e.lastKnown[name]
	return outcome, ok
}

// Reset forgets all remembered outcomes.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastKnown = make(map[model.FieldName]model.ValidationOutcome)
}

func (e *Engine) evaluate(name model.FieldName, snap model.FormSnapshot) (model.ValidationOutcome, error) {
	outcome, err := e.rules.Evaluate(name, snap)
	if err != nil {
		return model.ValidationOutcome{}, err
	}
	if name == model.FieldPassword && outcome.Valid {
		s := e.scorer(snap.Value(model.FieldPassword))
		outcome.Strength = &s
	}
	e.metrics.ObserveOutcome(outcome)
	e.logger.Debugw("field evaluated", "field", name, "valid", outcome.Valid)
	return outcome, nil
}

func (e *Engine) remember(outcomes ...model.ValidationOutcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, outcome := range outcomes {
		e.lastKnown[outcome.Field] = outcome
	}
}
