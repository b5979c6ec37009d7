package advisor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/advisor-backtest/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("action", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAction(fl.Field().String())
		return ok
	})
	return v
}

// Validate turns raw advisor output into a Recommendation. The action must
// name BUY, SELL or HOLD (any case) and the confidence must lie in [0, 1].
// Failures wrap models.ErrMalformedRecommendation.
func Validate(raw RawRecommendation) (models.Recommendation, error) {
	if err := validate.Struct(raw); err != nil {
		return models.HoldRecommendation(), fmt.Errorf("%w: %s", models.ErrMalformedRecommendation, describe(err))
	}

	action, _ := models.ParseAction(raw.Action)
	return models.Recommendation{
		Action:     action,
		Confidence: *raw.Confidence,
	}, nil
}

func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	var sb strings.Builder
	for i, fe := range validationErrors {
		if i > 0 {
			sb.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			fmt.Fprintf(&sb, "%s is required", strings.ToLower(fe.Field()))
		case "action":
			fmt.Fprintf(&sb, "unknown action %q", fe.Value())
		default:
			fmt.Fprintf(&sb, "%s failed %s=%s (got %v)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param(), fe.Value())
		}
	}
	return sb.String()
}
