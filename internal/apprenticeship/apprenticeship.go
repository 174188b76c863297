// Package apprenticeship holds the records exchanged between storage, the
// matching engine and the presentation layer.
package apprenticeship

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Candidate is a student looking for an apprenticeship.
// PreferredLocations is ordered: index 0 is the most preferred location.
type Candidate struct {
	ID                 string   `json:"id" mapstructure:"id" validate:"required"`
	Name               string   `json:"name" mapstructure:"name"`
	Email              string   `json:"email,omitempty" mapstructure:"email"`
	GPA                float64  `json:"gpa" mapstructure:"gpa" validate:"gte=0,lte=5"`
	Specialization     string   `json:"specialization" mapstructure:"specialization"`
	PreferredLocations []string `json:"preferred_locations" mapstructure:"preferred_locations"`
	Skills             []string `json:"skills" mapstructure:"skills"`
}

// Company owns openings.
type Company struct {
	ID    string `json:"id" mapstructure:"id" validate:"required"`
	Name  string `json:"name" mapstructure:"name" validate:"required"`
	Email string `json:"email" mapstructure:"email" validate:"required,email"`
}

// Opening is a single apprenticeship position posted by a company.
type Opening struct {
	ID             string   `json:"id" mapstructure:"id" validate:"required"`
	CompanyID      string   `json:"company_id" mapstructure:"company_id"`
	Specialization string   `json:"specialization" mapstructure:"specialization"`
	Location       string   `json:"location" mapstructure:"location"`
	Stipend        int      `json:"stipend" mapstructure:"stipend" validate:"gt=0"`
	RequiredSkills []string `json:"required_skills" mapstructure:"required_skills"`
}

// Status is the lifecycle state of an application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// Valid reports whether s is a known application status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted
}

// Application links a candidate to an opening.
type Application struct {
	ID          string    `json:"id" mapstructure:"id"`
	CandidateID string    `json:"candidate_id" mapstructure:"candidate_id" validate:"required"`
	OpeningID   string    `json:"opening_id" mapstructure:"opening_id" validate:"required"`
	Status      Status    `json:"status" mapstructure:"status"`
	CreatedAt   time.Time `json:"created_at" mapstructure:"-"`
	UpdatedAt   time.Time `json:"updated_at" mapstructure:"-"`
}

// ApplicationDetails is an application joined with the candidate and opening
// it refers to, as shown to candidates and companies.
type ApplicationDetails struct {
	Application
	CandidateName  string  `json:"candidate_name"`
	CandidateEmail string  `json:"candidate_email,omitempty"`
	GPA            float64 `json:"gpa"`
	CompanyID      string  `json:"company_id"`
	Specialization string  `json:"specialization"`
	Location       string  `json:"location"`
	Stipend        int     `json:"stipend"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so messages match what users typed.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the record against its field constraints.
func (c *Candidate) Validate() error { return validate.Struct(c) }

// Validate checks the record against its field constraints.
func (o *Opening) Validate() error { return validate.Struct(o) }

// Validate checks the record against its field constraints.
func (c *Company) Validate() error { return validate.Struct(c) }

// ValidateStruct exposes the shared validator for request structures defined
// in other packages.
func ValidateStruct(v any) error { return validate.Struct(v) }
