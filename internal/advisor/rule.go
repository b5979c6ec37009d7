package advisor

import (
	"context"
	"math"
)

// RuleAdvisor acts on the rule-based signal alone. Confidence is the share
// of the largest possible score that the signal reached.
type RuleAdvisor struct {
	maxScore float64
}

// NewRuleAdvisor creates a rule advisor for a generator whose absolute score
// never exceeds maxScore.
func NewRuleAdvisor(maxScore float64) *RuleAdvisor {
	return &RuleAdvisor{maxScore: maxScore}
}

// Name returns "rule".
func (a *RuleAdvisor) Name() string {
	return "rule"
}

// Recommend echoes the signal's action.
func (a *RuleAdvisor) Recommend(ctx context.Context, in Context) (RawRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return RawRecommendation{}, err
	}

	var confidence float64
	if a.maxScore > 0 {
		confidence = math.Min(1, math.Abs(in.Signal.Score)/a.maxScore)
	}
	return RawRecommendation{
		Action:     string(in.Signal.Action),
		Confidence: &confidence,
	}, nil
}
