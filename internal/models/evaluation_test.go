package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluationPresentation(t *testing.T) {
	cases := []struct {
		score int
		label string
		tier  ScoreTier
		stars int
	}{
		{score: 95, label: "Excellent!", tier: TierSuccess, stars: 4},
		{score: 100, label: "Excellent!", tier: TierSuccess, stars: 5},
		{score: 85, label: "Great Job!", tier: TierSuccess, stars: 4},
		{score: 72, label: "Good Work!", tier: TierAccent, stars: 3},
		{score: 60, label: "Nice Try!", tier: TierAccent, stars: 3},
		{score: 10, label: "Keep Practicing!", tier: TierDestructive, stars: 0},
		{score: -5, label: "Keep Practicing!", tier: TierDestructive, stars: 0},
		{score: 250, label: "Excellent!", tier: TierSuccess, stars: 5},
	}

	for _, tc := range cases {
		eval := Evaluation{Score: tc.score}
		require.Equal(t, tc.label, eval.Label(), "score %d", tc.score)
		require.Equal(t, tc.tier, eval.Tier(), "score %d", tc.score)
		require.Equal(t, tc.stars, eval.Stars(), "score %d", tc.score)
	}
}

func TestEvaluationCloneDoesNotAlias(t *testing.T) {
	original := Evaluation{Score: 85, Strengths: []string{"clear"}}
	clone := original.Clone()
	clone.Strengths[0] = "changed"

	require.Equal(t, "clear", original.Strengths[0])
	require.Nil(t, clone.Weaknesses)
}

func TestParseDifficulty(t *testing.T) {
	d, ok := ParseDifficulty("  Advanced ")
	require.True(t, ok)
	require.Equal(t, DifficultyAdvanced, d)

	_, ok = ParseDifficulty("expert")
	require.False(t, ok)
}
