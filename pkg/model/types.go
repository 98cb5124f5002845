package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a field name is not part of the signup form.
var ErrUnknownField = errors.New("model: unknown field")

// FieldName identifies one of the fixed signup inputs.
type FieldName string

const (
	FieldFirstName       FieldName = "firstName"
	FieldLastName        FieldName = "lastName"
	FieldEmail           FieldName = "email"
	FieldPassword        FieldName = "password"
	FieldConfirmPassword FieldName = "confirmPassword"
	FieldPhone           FieldName = "phone"
)

var fieldOrder = []FieldName{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPassword,
	FieldConfirmPassword,
	FieldPhone,
}

// Fields returns every field in evaluation order. The slice is a copy.
func Fields() []FieldName {
	return append([]FieldName(nil), fieldOrder...)
}

// Known reports whether n is one of the signup fields.
func (n FieldName) Known() bool {
	for _, name := range fieldOrder {
		if name == n {
			return true
		}
	}
	return false
}

func (n FieldName) String() string {
	return string(n)
}

// ParseFieldName resolves user supplied names (CLI flags, fixture keys).
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseFieldName(raw string) (FieldName, error) {
	trimmed := strings.TrimSpace(raw)
	for _, name := range fieldOrder {
		if strings.EqualFold(string(name), trimmed) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
}

// StrengthTier is the advisory password quality bucket.
type StrengthTier string

const (
	TierWeak   StrengthTier = "weak"
	TierMedium StrengthTier = "medium"
	TierStrong StrengthTier = "strong"
)

// Label returns the feedback text shown next to the password input.
func (t StrengthTier) Label() string {
	switch t {
	case TierWeak:
		return "Weak password"
	case TierMedium:
		return "Medium strength password"
	case TierStrong:
		return "Strong password!"
	default:
		return ""
	}
}

// Strength pairs the raw score (0..5) with its tier.
type Strength struct {
	Score int          `json:"score"`
	Tier  StrengthTier `json:"tier"`
}

// ValidationOutcome is the result of evaluating one field rule.
type ValidationOutcome struct {
	Field   FieldName `json:"field"`
	Valid   bool      `json:"valid"`
	Message string    `json:"message,omitempty"`
	// Notice is positive feedback attached to a valid outcome ("Email looks good!").
	Notice string `json:"notice,omitempty"`
	// Strength is only populated for a valid password outcome.
	Strength *Strength `json:"strength,omitempty"`
}

// SubmissionState is the lifecycle position of the submit flow.
type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateSubmitting SubmissionState = "submitting"
	StateSucceeded  SubmissionState = "succeeded"
)

func (s SubmissionState) String() string {
	return string(s)
}
