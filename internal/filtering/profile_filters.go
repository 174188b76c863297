package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/profile"
)

type specializationFilter struct{}

// NewSpecialization creates a filter that keeps openings in the candidate's specialization.
func NewSpecialization() Filter {
	return &specializationFilter{}
}

func (f *specializationFilter) Name() string { return "specialization" }

func (f *specializationFilter) Disable(string) {}

func (f *specializationFilter) IsEnabled() bool { return true }

func (f *specializationFilter) Validate(*Config) error { return nil }

func (f *specializationFilter) Apply(_ context.Context, deps Deps, o *apprenticeship.Openings) (*apprenticeship.Openings, Step, error) {
	initial := o.Len()
	want := deps.Profile.Specialization

	excluded := o.Keep(func(op *apprenticeship.Opening) bool {
		return want != "" && profile.Fold(op.Specialization) == want
	})
	logExcluded(deps.Logger, "excluding openings outside the specialization", excluded, o,
		zap.String("specialization", want))

	return o, Step{Initial: initial, Dropped: len(excluded), Left: o.Len()}, nil
}

type locationsFilter struct{}

// NewLocations creates a filter that keeps openings in any of the preferred locations.
// Preference order does not matter here.
func NewLocations() Filter {
	return &locationsFilter{}
}

func (f *locationsFilter) Name() string { return "locations" }

func (f *locationsFilter) Disable(string) {}

func (f *locationsFilter) IsEnabled() bool { return true }

func (f *locationsFilter) Validate(*Config) error { return nil }

func (f *locationsFilter) Apply(_ context.Context, deps Deps, o *apprenticeship.Openings) (*apprenticeship.Openings, Step, error) {
	initial := o.Len()
	preferred := deps.Profile.LocationSet()

	excluded := o.Keep(func(op *apprenticeship.Opening) bool {
		return preferred.Has(profile.Fold(op.Location))
	})
	logExcluded(deps.Logger, "excluding openings outside preferred locations", excluded, o,
		zap.Strings("locations", deps.Profile.Locations))

	return o, Step{Initial: initial, Dropped: len(excluded), Left: o.Len()}, nil
}

type skillsFilter struct{}

// NewSkills creates a filter that keeps openings sharing at least one skill with the candidate.
func NewSkills() Filter {
	return &skillsFilter{}
}

func (f *skillsFilter) Name() string { return "skills" }

func (f *skillsFilter) Disable(string) {}

func (f *skillsFilter) IsEnabled() bool { return true }

func (f *skillsFilter) Validate(*Config) error { return nil }

func (f *skillsFilter) Apply(_ context.Context, deps Deps, o *apprenticeship.Openings) (*apprenticeship.Openings, Step, error) {
	initial := o.Len()

	excluded := o.Keep(func(op *apprenticeship.Opening) bool {
		return deps.Profile.Skills.Intersects(profile.Skills(op.RequiredSkills))
	})
	logExcluded(deps.Logger, "excluding openings without skill overlap", excluded, o,
		zap.String("skills", strings.Join(deps.Profile.Skills.Sorted(), ",")))

	return o, Step{Initial: initial, Dropped: len(excluded), Left: o.Len()}, nil
}

func logExcluded(log *zap.Logger, msg string, excluded []string, o *apprenticeship.Openings, fields ...zap.Field) {
	if log == nil || len(excluded) == 0 {
		return
	}
	fields = append(fields,
		zap.Strings("excluded_openings", excluded),
		zap.Int("openings_left", o.Len()),
	)
	log.Info(msg, fields...)
}
