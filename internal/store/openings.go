package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
)

const openingColumns = `id, company_id, specialization, location, stipend, required_skills`

// FetchOpenings returns every opening in posting order.
func (s *Store) FetchOpenings(ctx context.Context) ([]apprenticeship.Opening, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+openingColumns+` FROM openings ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch openings: %w", err)
	}

	openings, err := pgx.CollectRows(rows, scanOpening)
	if err != nil {
		return nil, fmt.Errorf("failed to scan openings: %w", err)
	}
	return openings, nil
}

// AddOpening posts an opening for an existing company. An empty id is
// replaced with a new UUID.
func (s *Store) AddOpening(ctx context.Context, o apprenticeship.Opening) (*apprenticeship.Opening, error) {
	if strings.TrimSpace(o.ID) == "" {
		o.ID = uuid.NewString()
	}
	o.CompanyID = strings.TrimSpace(o.CompanyID)
	o.Specialization = strings.TrimSpace(o.Specialization)
	o.Location = strings.TrimSpace(o.Location)
	o.RequiredSkills = splitItems(o.RequiredSkills)

	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid opening: %w", err)
	}
	if o.CompanyID == "" || o.Specialization == "" || o.Location == "" {
		return nil, errors.New("invalid opening: company, specialization and location are required")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO openings (`+openingColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.CompanyID, o.Specialization, o.Location, o.Stipend, o.RequiredSkills,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add opening: %w", mapError(err))
	}
	return &o, nil
}

// DeleteOpening removes an opening of the given company together with its
// applications.
func (s *Store) DeleteOpening(ctx context.Context, companyID, openingID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM openings WHERE id = $1 AND company_id = $2`,
		openingID, companyID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete opening: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("opening %q of company %q: %w", openingID, companyID, ErrNotFound)
	}
	return nil
}

func scanOpening(row pgx.CollectableRow) (apprenticeship.Opening, error) {
	var o apprenticeship.Opening
	err := row.Scan(&o.ID, &o.CompanyID, &o.Specialization, &o.Location, &o.Stipend, &o.RequiredSkills)
	return o, err
}
