package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
)

const ignoreAppliedMsg = "ignore-applied flag is set"

type appliedHistoryFilter struct {
	ignore bool
}

// NewAppliedHistory creates a filter that removes openings the candidate already applied to.
func NewAppliedHistory() Filter {
	return &appliedHistoryFilter{}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Disable(string) {}

func (f *appliedHistoryFilter) IsEnabled() bool { return true }

func (f *appliedHistoryFilter) Validate(cfg *Config) error {
	f.ignore = cfg != nil && cfg.IgnoreApplied
	return nil
}

func (f *appliedHistoryFilter) Apply(_ context.Context, deps Deps, o *apprenticeship.Openings) (*apprenticeship.Openings, Step, error) {
	initial := o.Len()
	if f.ignore {
		if deps.Logger != nil {
			deps.Logger.Info("keeping already applied openings", zap.String("reason", ignoreAppliedMsg))
		}
		return o, Step{Initial: initial, Dropped: 0, Left: o.Len()}, nil
	}

	excluded := o.Exclude(deps.Applied)
	logExcluded(deps.Logger, "excluding openings based on my applications", excluded, o)

	return o, Step{Initial: initial, Dropped: len(excluded), Left: o.Len()}, nil
}

func (f *appliedHistoryFilter) Status() Status {
	details := map[string]string{
		"exclude_applied": strconv.FormatBool(!f.ignore),
	}
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}
