package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
)

const applicationColumns = `id, candidate_id, opening_id, status, created_at, updated_at`

// FetchAppliedOpeningIDs returns the ids of openings the candidate applied to.
func (s *Store) FetchAppliedOpeningIDs(ctx context.Context, candidateID string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT opening_id FROM applications WHERE candidate_id = $1`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan applications: %w", err)
	}

	applied := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		applied[id] = struct{}{}
	}
	return applied, nil
}

// Apply creates a pending application. A second application to the same
// opening returns ErrAlreadyApplied.
func (s *Store) Apply(ctx context.Context, candidateID, openingID string) (*apprenticeship.Application, error) {
	rows, err := s.pool.Query(ctx,
		`INSERT INTO applications (id, candidate_id, opening_id, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (candidate_id, opening_id) DO NOTHING
		 RETURNING `+applicationColumns,
		uuid.NewString(), candidateID, openingID, apprenticeship.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to apply: %w", mapError(err))
	}

	a, err := pgx.CollectOneRow(rows, scanApplication)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("candidate %q to opening %q: %w", candidateID, openingID, ErrAlreadyApplied)
		}
		return nil, fmt.Errorf("failed to apply: %w", mapError(err))
	}
	return &a, nil
}

// AcceptApplication moves a pending application to accepted. Any other
// current status yields ErrNotPending.
func (s *Store) AcceptApplication(ctx context.Context, applicationID string) (*apprenticeship.Application, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3
		 RETURNING `+applicationColumns,
		apprenticeship.StatusAccepted, applicationID, apprenticeship.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to accept application: %w", err)
	}

	a, err := pgx.CollectOneRow(rows, scanApplication)
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to accept application: %w", err)
	}

	current, err := s.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("application %q is %s: %w", applicationID, current.Status, ErrNotPending)
}

// GetApplication returns ErrNotFound when no application has the id.
func (s *Store) GetApplication(ctx context.Context, id string) (*apprenticeship.Application, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	a, err := pgx.CollectOneRow(rows, scanApplication)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("application %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &a, nil
}

const applicationDetailsQuery = `
SELECT a.id, a.candidate_id, a.opening_id, a.status, a.created_at, a.updated_at,
       c.name, c.email, c.gpa,
       o.company_id, o.specialization, o.location, o.stipend
FROM applications a
JOIN candidates c ON c.id = a.candidate_id
JOIN openings o ON o.id = a.opening_id
`

// ListApplicationsByCandidate returns the candidate's applications, newest first.
func (s *Store) ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]apprenticeship.ApplicationDetails, error) {
	return s.listApplications(ctx, applicationDetailsQuery+`WHERE a.candidate_id = $1 ORDER BY a.created_at DESC, a.id`, candidateID)
}

// ListApplicationsByCompany returns applications to the company's openings,
// strongest GPA first.
func (s *Store) ListApplicationsByCompany(ctx context.Context, companyID string) ([]apprenticeship.ApplicationDetails, error) {
	return s.listApplications(ctx, applicationDetailsQuery+`WHERE o.company_id = $1 ORDER BY o.id, c.gpa DESC, a.id`, companyID)
}

func (s *Store) listApplications(ctx context.Context, query string, arg string) ([]apprenticeship.ApplicationDetails, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	details, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (apprenticeship.ApplicationDetails, error) {
		var d apprenticeship.ApplicationDetails
		err := row.Scan(
			&d.ID, &d.CandidateID, &d.OpeningID, &d.Status, &d.CreatedAt, &d.UpdatedAt,
			&d.CandidateName, &d.CandidateEmail, &d.GPA,
			&d.CompanyID, &d.Specialization, &d.Location, &d.Stipend,
		)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan applications: %w", err)
	}
	return details, nil
}

func scanApplication(row pgx.CollectableRow) (apprenticeship.Application, error) {
	var a apprenticeship.Application
	err := row.Scan(&a.ID, &a.CandidateID, &a.OpeningID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
