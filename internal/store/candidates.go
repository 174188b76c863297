package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/profile"
)

const candidateColumns = `id, name, email, gpa, specialization, preferred_locations, skills`

// FetchCandidates returns every candidate ordered by id.
func (s *Store) FetchCandidates(ctx context.Context) ([]apprenticeship.Candidate, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	candidates, err := pgx.CollectRows(rows, scanCandidate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidates: %w", err)
	}
	return candidates, nil
}

// GetCandidate returns ErrNotFound when no candidate has the id.
func (s *Store) GetCandidate(ctx context.Context, id string) (*apprenticeship.Candidate, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	c, err := pgx.CollectOneRow(rows, scanCandidate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("candidate %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return &c, nil
}

// AddCandidate registers a new candidate. Lists are stored split and trimmed.
func (s *Store) AddCandidate(ctx context.Context, c apprenticeship.Candidate) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid candidate: %w", err)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO candidates (`+candidateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, strings.TrimSpace(c.Name), strings.TrimSpace(c.Email), c.GPA,
		strings.TrimSpace(c.Specialization), splitItems(c.PreferredLocations), splitItems(c.Skills),
	)
	if err != nil {
		return fmt.Errorf("failed to add candidate: %w", mapError(err))
	}
	return nil
}

// CandidateUpdate lists the candidate fields that may change after
// registration. Nil fields are left untouched.
type CandidateUpdate struct {
	Name               *string   `json:"name" validate:"omitnil,min=1"`
	Email              *string   `json:"email" validate:"omitnil,email"`
	GPA                *float64  `json:"gpa" validate:"omitnil,gte=0,lte=5"`
	Specialization     *string   `json:"specialization" validate:"omitnil,min=1"`
	PreferredLocations *[]string `json:"preferred_locations"`
	Skills             *[]string `json:"skills"`
}

// assignments returns SET clauses with numbered placeholders and their
// arguments. Column names are fixed here and never come from callers.
func (u CandidateUpdate) assignments() ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Name != nil {
		add("name", strings.TrimSpace(*u.Name))
	}
	if u.Email != nil {
		add("email", strings.TrimSpace(*u.Email))
	}
	if u.GPA != nil {
		add("gpa", *u.GPA)
	}
	if u.Specialization != nil {
		add("specialization", strings.TrimSpace(*u.Specialization))
	}
	if u.PreferredLocations != nil {
		add("preferred_locations", splitItems(*u.PreferredLocations))
	}
	if u.Skills != nil {
		add("skills", splitItems(*u.Skills))
	}

	return sets, args
}

// UpdateCandidate applies the non-nil fields of u.
func (s *Store) UpdateCandidate(ctx context.Context, id string, u CandidateUpdate) error {
	if err := apprenticeship.ValidateStruct(u); err != nil {
		return fmt.Errorf("invalid candidate update: %w", err)
	}

	sets, args := u.assignments()
	if len(sets) == 0 {
		return ErrEmptyUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE candidates SET %s, updated_at = NOW() WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("candidate %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanCandidate(row pgx.CollectableRow) (apprenticeship.Candidate, error) {
	var c apprenticeship.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.GPA, &c.Specialization, &c.PreferredLocations, &c.Skills)
	return c, err
}

// splitItems flattens comma separated entries into trimmed items.
func splitItems(items []string) []string {
	return profile.SplitList(strings.Join(items, ","))
}
