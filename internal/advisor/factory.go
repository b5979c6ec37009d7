package advisor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/advisor-backtest/internal/config"
)

// New builds the advisor named by cfg. maxScore bounds the rule advisor's
// confidence scale.
func New(cfg *config.Config, maxScore float64, log *logrus.Logger) (Advisor, error) {
	var a Advisor
	switch cfg.Advisor.Type {
	case "rule":
		a = NewRuleAdvisor(maxScore)
	case "http":
		if cfg.Advisor.URL == "" {
			return nil, fmt.Errorf("advisor url is required for the http advisor")
		}
		a = NewHTTPAdvisor(cfg.Advisor.URL, cfg.AdvisorTimeout(), cfg.Advisor.MaxRetries, log)
	default:
		return nil, fmt.Errorf("unknown advisor type: %s", cfg.Advisor.Type)
	}

	if cfg.Advisor.CacheEnabled {
		a = NewCachedAdvisor(a, cfg.AdvisorCacheTTL())
	}
	return a, nil
}
