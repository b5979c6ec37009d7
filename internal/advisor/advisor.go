// Package advisor defines the recommendation capability consulted once per
// simulated period, along with its implementations and validation.
package advisor

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/advisor-backtest/internal/models"
)

// ErrAdvisorUnavailable indicates the advisor could not produce any answer.
var ErrAdvisorUnavailable = errors.New("advisor unavailable")

// Context is the point-in-time bundle an advisor decides on.
type Context struct {
	Instrument string                   `json:"instrument"`
	AsOf       time.Time                `json:"as_of"`
	Indicators models.IndicatorSnapshot `json:"indicators"`
	Risk       models.RiskProfile       `json:"risk"`
	Signal     models.Signal            `json:"signal"`
	News       []models.NewsArticle     `json:"news,omitempty"`
}

// RawRecommendation is advisor output before validation. Nothing about it is
// trusted until Validate accepts it.
type RawRecommendation struct {
	Action     string   `json:"action" validate:"required,action"`
	Confidence *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
}

// Advisor turns a Context into a recommendation.
type Advisor interface {
	// Name identifies the advisor in logs and metrics
	Name() string

	// Recommend may block on I/O; it must honour ctx cancellation
	Recommend(ctx context.Context, in Context) (RawRecommendation, error)
}
