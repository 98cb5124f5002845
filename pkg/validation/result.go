package validation

import "github.com/goliatone/go-signup/pkg/model"

// TermsField is the Issue.Field used for the terms-acceptance gate.
const TermsField = "terms"

// Issue is one failure with the field it belongs to.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result summarises a full-form check for non-interactive callers.
type Result struct {
	Valid         bool                      `json:"valid"`
	TermsAccepted bool                      `json:"termsAccepted"`
	Issues        []Issue                   `json:"issues,omitempty"`
	Outcomes      []model.ValidationOutcome `json:"outcomes"`
}

// ResultFromOutcomes folds an outcome set and the terms flag into a Result.
// termsNotice is reported as the first issue when terms are not accepted.
func ResultFromOutcomes(set model.OutcomeSet, termsAccepted bool, termsNotice string) Result {
	result := Result{
		Valid:         termsAccepted && set.Valid(),
		TermsAccepted: termsAccepted,
		Outcomes:      append([]model.ValidationOutcome(nil), set...),
	}
	if !termsAccepted {
		result.Issues = append(result.Issues, Issue{Field: TermsField, Message: termsNotice})
	}
	for _, outcome := range set {
		if outcome.Valid {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Field:   string(outcome.Field),
			Message: outcome.Message,
		})
	}
	return result
}

// Check runs ValidateAll on snap and reports the combined Result.
func (e *Engine) Check(snap model.FormSnapshot, termsNotice string) Result {
	return ResultFromOutcomes(e.ValidateAll(snap), snap.TermsAccepted, termsNotice)
}
