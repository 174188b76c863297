package filtering

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/ai"
	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/logger"
)

type aiFitFilter struct {
	disabled    bool
	reason      string
	config      *AIConfig
	assessments map[string]*ai.FitAssessment
}

// NewAIFit creates the AI-based filtering step.
func NewAIFit() Filter {
	return &aiFitFilter{}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return !f.disabled }

func (f *aiFitFilter) Validate(cfg *Config) error {
	f.config = nil
	if cfg != nil {
		f.config = cfg.AI
	}
	if f.config == nil || !f.config.Enabled {
		f.Disable("ai review is disabled in configuration")
		return nil
	}
	if f.config.MinimumFitScore < 0 || f.config.MinimumFitScore > 1 {
		return fmt.Errorf("minimum fit score must be within [0,1], got %v", f.config.MinimumFitScore)
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, deps Deps, o *apprenticeship.Openings) (*apprenticeship.Openings, Step, error) {
	initial := o.Len()
	if deps.Reviewer == nil {
		if deps.Logger != nil {
			deps.Logger.Info("ai reviewer is not configured; skipping ai_fit filter")
		}
		return o, Step{Initial: initial, Dropped: 0, Left: o.Len()}, nil
	}
	if deps.Candidate == nil {
		return o, Step{}, errors.New("candidate is required for AI review")
	}

	assessments, err := reviewOpenings(ctx, logger.WithFields(deps.Logger), deps.Reviewer, deps.Candidate, o)
	if err != nil {
		return o, Step{}, err
	}
	f.assessments = assessments

	left := o.Len()
	return o, Step{Initial: initial, Dropped: initial - left, Left: left}, nil
}

func (f *aiFitFilter) Assessments() map[string]*ai.FitAssessment {
	if f.assessments == nil {
		return map[string]*ai.FitAssessment{}
	}
	return f.assessments
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{}
	if f.config != nil {
		details["minimum_fit_score"] = fmt.Sprintf("%.2f", f.config.MinimumFitScore)
		if f.config.Model != "" {
			details["model"] = f.config.Model
		}
		details["max_log_length"] = strconv.Itoa(f.config.MaxLogLength)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// reviewOpenings keeps openings the reviewer approves. Openings whose review
// fails are kept.
func reviewOpenings(ctx context.Context, log *zap.Logger, reviewer ai.Reviewer, candidate *apprenticeship.Candidate, o *apprenticeship.Openings) (map[string]*ai.FitAssessment, error) {
	assessments := make(map[string]*ai.FitAssessment)
	initial := o.Len()

	var ctxErr error
	o.Keep(func(op *apprenticeship.Opening) bool {
		if ctxErr != nil {
			return true
		}
		if err := ctx.Err(); err != nil {
			ctxErr = err
			return true
		}

		openingLog := log.With(zap.String(logger.FieldOpeningID, op.ID))

		assessment, err := reviewer.Review(ctx, candidate, op)
		if err != nil {
			openingLog.Warn("AI review failed", zap.Error(err))
			return true
		}

		if !assessment.Fit {
			openingLog.Info("opening rejected by AI provider",
				zap.Float64("ai_score", assessment.Score),
				zap.String(logger.FieldReason, assessment.Reason),
			)
			return false
		}

		openingLog.Info("opening approved by AI", zap.Float64("ai_score", assessment.Score))
		assessments[op.ID] = assessment
		return true
	})
	if ctxErr != nil {
		return nil, ctxErr
	}

	if initial != o.Len() {
		log.Info("AI filtering completed",
			zap.Int("initial_openings", initial),
			zap.Int("approved_openings", o.Len()),
		)
	}

	return assessments, nil
}
