package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-signup/pkg/model"
)

// SpaceClass is the body of a character class matching the ECMAScript \s set
// (WhiteSpace plus LineTerminator). Go's \s only covers ASCII, so the class is
// spelled out with literal characters, which RE2 and ECMAScript both accept.
const SpaceClass = "\t\n\v\f\r \u00a0\u1680\u2000-\u200a\u2028\u2029\u202f\u205f\u3000\ufeff"

const (
	// EmailPattern accepts local@domain.tld where no part contains whitespace or '@'.
	EmailPattern = `^[^` + SpaceClass + `@]+@[^` + SpaceClass + `@]+\.[^` + SpaceClass + `@]+$`
	// PhonePattern accepts an optional '+', a digit 1-9, then up to 15 digits.
	PhonePattern = `^[+]?[1-9][0-9]{0,15}$`

	MinNameLength     = 2
	MinPasswordLength = 8
)

const (
	MessageFirstName       = "First name must be at least 2 characters long"
	MessageLastName        = "Last name must be at least 2 characters long"
	MessageEmail           = "Please enter a valid email address"
	MessagePassword        = "Password must be at least 8 characters long"
	MessageConfirmPassword = "Passwords do not match"
	MessagePhone           = "Please enter a valid phone number"

	// NoticeEmail is attached to a valid email outcome.
	NoticeEmail = "Email looks good!"
)

var (
	emailRe = regexp.MustCompile(EmailPattern)
	phoneRe = regexp.MustCompile(PhonePattern)
)

// Predicate decides validity of one raw value. The snapshot gives access to
// sibling fields (confirmPassword reads password).
type Predicate func(raw string, snap model.FormSnapshot) bool

// Rule is an immutable predicate plus failure message for one field.
type Rule struct {
	Name      model.FieldName
	Predicate Predicate
	Message   string
	// Notice is reported on success; empty for most fields.
	Notice string
}

// Check evaluates the rule against the snapshot value of its field.
func (r Rule) Check(snap model.FormSnapshot) model.ValidationOutcome {
	outcome := model.ValidationOutcome{Field: r.Name}
	if r.Predicate != nil && r.Predicate(snap.Value(r.Name), snap) {
		outcome.Valid = true
		outcome.Notice = r.Notice
		return outcome
	}
	outcome.Message = r.Message
	return outcome
}

// Set is the fixed collection of rules, one per field. The zero value has no
// rules; use Default.
type Set struct {
	rules map[model.FieldName]Rule
}

var defaultSet = Set{rules: map[model.FieldName]Rule{
	model.FieldFirstName: {
		Name:      model.FieldFirstName,
		Predicate: minTrimmedLength(MinNameLength),
		Message:   MessageFirstName,
	},
	model.FieldLastName: {
		Name:      model.FieldLastName,
		Predicate: minTrimmedLength(MinNameLength),
		Message:   MessageLastName,
	},
	model.FieldEmail: {
		Name:      model.FieldEmail,
		Predicate: matches(emailRe),
		Message:   MessageEmail,
		Notice:    NoticeEmail,
	},
	model.FieldPassword: {
		Name: model.FieldPassword,
		Predicate: func(raw string, _ model.FormSnapshot) bool {
			return Length(raw) >= MinPasswordLength
		},
		Message: MessagePassword,
	},
	model.FieldConfirmPassword: {
		Name: model.FieldConfirmPassword,
		Predicate: func(raw string, snap model.FormSnapshot) bool {
			return raw == snap.Value(model.FieldPassword)
		},
		Message: MessageConfirmPassword,
	},
	model.FieldPhone: {
		Name: model.FieldPhone,
		Predicate: func(raw string, _ model.FormSnapshot) bool {
			return raw == "" || phoneRe.MatchString(raw)
		},
		Message: MessagePhone,
	},
}}

// Default returns the signup rule set. Rules are shared and never mutated.
func Default() Set {
	return defaultSet
}

// Rule returns the rule registered for name.
func (s Set) Rule(name model.FieldName) (Rule, bool) {
	rule, ok := s.rules[name]
	return rule, ok
}

// Evaluate runs the rule for name against snap.
func (s Set) Evaluate(name model.FieldName, snap model.FormSnapshot) (model.ValidationOutcome, error) {
	rule, ok := s.rules[name]
	if !ok {
		return model.ValidationOutcome{}, fmt.Errorf("rules: %w: %q", model.ErrUnknownField, name)
	}
	return rule.Check(snap), nil
}

// Override returns a copy of s with rule replacing the entry for rule.Name.
func (s Set) Override(rule Rule) Set {
	out := Set{rules: make(map[model.FieldName]Rule, len(s.rules)+1)}
	for name, existing := range s.rules {
		out.rules[name] = existing
	}
	out.rules[rule.Name] = rule
	return out
}

func minTrimmedLength(min int) Predicate {
	return func(raw string, _ model.FormSnapshot) bool {
		return Length(TrimSpace(raw)) >= min
	}
}

func matches(re *regexp.Regexp) Predicate {
	return func(raw string, _ model.FormSnapshot) bool {
		return re.MatchString(raw)
	}
}

// Length counts UTF-16 code units, the unit browsers use for input length.
func Length(value string) int {
	n := 0
	for _, r := range value {
		if r >= 0x10000 {
			n += 2
			continue
		}
		n++
	}
	return n
}

// TrimSpace strips the ECMAScript whitespace set from both ends.
func TrimSpace(value string) string {
	return strings.TrimFunc(value, isJSSpace)
}

func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}
