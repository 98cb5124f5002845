package model

// FormSnapshot is a read-only capture of every raw field value plus the terms
// checkbox at one instant.
type FormSnapshot struct {
	Values        map[FieldName]string `json:"values"`
	TermsAccepted bool                 `json:"termsAccepted"`
}

// NewSnapshot copies values so later mutation by the caller is not observed.
func NewSnapshot(values map[FieldName]string, termsAccepted bool) FormSnapshot {
	snap := FormSnapshot{
		Values:        make(map[FieldName]string, len(fieldOrder)),
		TermsAccepted: termsAccepted,
	}
	for name, value := range values {
		snap.Values[name] = value
	}
	return snap
}

// Value returns the raw value for name, or "" when it was never set.
func (s FormSnapshot) Value(name FieldName) string {
	if s.Values == nil {
		return ""
	}
	return s.Values[name]
}

// Clone returns a deep copy.
func (s FormSnapshot) Clone() FormSnapshot {
	return NewSnapshot(s.Values, s.TermsAccepted)
}

// OutcomeSet holds exactly one outcome per field, in evaluation order.
type OutcomeSet []ValidationOutcome

// Valid is the AND of every outcome. An empty set is not valid.
func (s OutcomeSet) Valid() bool {
	if len(s) == 0 {
		return false
	}
	for _, outcome := range s {
		if !outcome.Valid {
			return false
		}
	}
	return true
}

// Get returns the outcome for name.
func (s OutcomeSet) Get(name FieldName) (ValidationOutcome, bool) {
	for _, outcome := range s {
		if outcome.Field == name {
			return outcome, true
		}
	}
	return ValidationOutcome{}, false
}

// Failed lists the fields whose outcome is invalid, in evaluation order.
func (s OutcomeSet) Failed() []FieldName {
	var out []FieldName
	for _, outcome := range s {
		if !outcome.Valid {
			out = append(out, outcome.Field)
		}
	}
	return out
}

// Messages maps failing fields to their message.
func (s OutcomeSet) Messages() map[FieldName]string {
	out := make(map[FieldName]string)
	for _, outcome := range s {
		if !outcome.Valid {
			out[outcome.Field] = outcome.Message
		}
	}
	return out
}
