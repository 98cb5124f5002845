// Package strength scores password quality. The tier is advisory: it never
// affects whether a password passes validation.
package strength

import "github.com/goliatone/go-signup/pkg/model"

// MaxScore is the highest possible score.
const MaxScore = 5

const minLength = 8

// Score returns the 0..5 score and the tier derived from it. One point each for
// length >= 8, a lowercase ASCII letter, an uppercase ASCII letter, an ASCII
// digit, and any other character.
func Score(password string) (int, model.StrengthTier) {
	var lower, upper, digit, other bool
	units := 0
	for _, r := range password {
		units++
		if r >= 0x10000 {
			units++
		}
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}

	score := 0
	for _, hit := range []bool{units >= minLength, lower, upper, digit, other} {
		if hit {
			score++
		}
	}
	return score, Tier(score)
}

// Tier maps a score onto weak (<3), medium (3-4) or strong (5).
func Tier(score int) model.StrengthTier {
	switch {
	case score < 3:
		return model.TierWeak
	case score < MaxScore:
		return model.TierMedium
	default:
		return model.TierStrong
	}
}

// Evaluate is Score packaged for a ValidationOutcome.
func Evaluate(password string) model.Strength {
	score, tier := Score(password)
	return model.Strength{Score: score, Tier: tier}
}
