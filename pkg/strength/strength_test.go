package strength_test

import (
	"testing"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/strength"
)

func TestScore(t *testing.T) {
	cases := []struct {
		password string
		score    int
		tier     model.StrengthTier
	}{
		{"abcdefgh", 2, model.TierWeak},
		{"ABCDEFGH", 2, model.TierWeak},
		{"abcdEFGH", 3, model.TierMedium},
		{"abcdEF12", 4, model.TierMedium},
		{"Abcd123!", 5, model.TierStrong},
		{"abc def gh", 3, model.TierMedium},
		{"pässwörd", 3, model.TierMedium},
		{"short", 1, model.TierWeak},
	}

	for _, tc := range cases {
		score, tier := strength.Score(tc.password)
		if score != tc.score || tier != tc.tier {
			t.Errorf("Score(%q) = (%d, %s), want (%d, %s)", tc.password, score, tier, tc.score, tc.tier)
		}
	}
}

func TestTierBoundaries(t *testing.T) {
	want := map[int]model.StrengthTier{
		0: model.TierWeak,
		2: model.TierWeak,
		3: model.TierMedium,
		4: model.TierMedium,
		5: model.TierStrong,
	}
	for score, tier := range want {
		if got := strength.Tier(score); got != tier {
			t.Errorf("Tier(%d) = %s, want %s", score, got, tier)
		}
	}
}

// Adding characters from new classes (or more characters) never lowers the score.
func TestScore_Monotonic(t *testing.T) {
	pairs := [][2]string{
		{"abcdefgh", "abcdefghA"},
		{"abcdefgh", "abcdefgh1"},
		{"abcdefgh", "abcdefgh!"},
		{"Abcdefgh", "Abcdefgh12"},
		{"Abcdefg1", "Abcdefg1#"},
		{"12345678", "12345678aB"},
	}
	for _, pair := range pairs {
		s1, _ := strength.Score(pair[0])
		s2, _ := strength.Score(pair[1])
		if s1 > s2 {
			t.Errorf("score(%q)=%d > score(%q)=%d", pair[0], s1, pair[1], s2)
		}
	}
}

func TestTierLabels(t *testing.T) {
	if model.TierStrong.Label() != "Strong password!" {
		t.Fatalf("unexpected strong label %q", model.TierStrong.Label())
	}
	if model.TierWeak.Label() != "Weak password" {
		t.Fatalf("unexpected weak label %q", model.TierWeak.Label())
	}
}
