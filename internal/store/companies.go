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

const companyColumns = `id, name, email`

// AddCompany registers a company. An empty id is replaced with a new UUID.
func (s *Store) AddCompany(ctx context.Context, c apprenticeship.Company) (*apprenticeship.Company, error) {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid company: %w", err)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (`+companyColumns+`) VALUES ($1, $2, $3)`,
		c.ID, c.Name, c.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add company: %w", mapError(err))
	}
	return &c, nil
}

// ListCompanies returns every company ordered by name.
func (s *Store) ListCompanies(ctx context.Context) ([]apprenticeship.Company, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	companies, err := pgx.CollectRows(rows, scanCompany)
	if err != nil {
		return nil, fmt.Errorf("failed to scan companies: %w", err)
	}
	return companies, nil
}

// GetCompany returns ErrNotFound when no company has the id.
func (s *Store) GetCompany(ctx context.Context, id string) (*apprenticeship.Company, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	c, err := pgx.CollectOneRow(rows, scanCompany)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// CompanyUpdate lists the company fields that may change after
// registration. Nil fields are left untouched.
type CompanyUpdate struct {
	Name  *string `json:"name" validate:"omitnil,min=1"`
	Email *string `json:"email" validate:"omitnil,email"`
}

func (u CompanyUpdate) assignments() ([]string, []any) {
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

	return sets, args
}

// UpdateCompany applies the non-nil fields of u. A taken email yields ErrConflict.
func (s *Store) UpdateCompany(ctx context.Context, id string, u CompanyUpdate) error {
	if err := apprenticeship.ValidateStruct(u); err != nil {
		return fmt.Errorf("invalid company update: %w", err)
	}

	sets, args := u.assignments()
	if len(sets) == 0 {
		return ErrEmptyUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE companies SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanCompany(row pgx.CollectableRow) (apprenticeship.Company, error) {
	var c apprenticeship.Company
	err := row.Scan(&c.ID, &c.Name, &c.Email)
	return c, err
}
