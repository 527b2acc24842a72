package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type distributorRepository struct {
	pool *pgxpool.Pool
}

// NewDistributorRepository wires a repository backed by pgxpool.
func NewDistributorRepository(pool *pgxpool.Pool) DistributorRepository {
	return &distributorRepository{pool: pool}
}

func (r *distributorRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Distributor, error) {
	if r.pool == nil {
		return domain.Distributor{}, fmt.Errorf("distributor repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, organization_id, name, contact_name, contact_email, created_at
		 FROM distributors
		 WHERE id = $1`,
		id,
	)

	dist, err := scanDistributor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Distributor{}, fmt.Errorf("distributor %s not found", id)
		}
		return domain.Distributor{}, fmt.Errorf("failed to get distributor: %w", err)
	}
	return dist, nil
}

func (r *distributorRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]domain.Distributor, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("distributor repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, organization_id, name, contact_name, contact_email, created_at
		 FROM distributors
		 WHERE organization_id = $1
		 ORDER BY name`,
		organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributors: %w", err)
	}
	defer rows.Close()

	distributors := []domain.Distributor{}
	for rows.Next() {
		dist, scanErr := scanDistributor(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan distributor: %w", scanErr)
		}
		distributors = append(distributors, dist)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate distributors: %w", rowsErr)
	}

	return distributors, nil
}

func scanDistributor(row pgx.Row) (domain.Distributor, error) {
	var (
		dist         domain.Distributor
		contactName  pgtype.Text
		contactEmail pgtype.Text
		createdAt    pgtype.Timestamptz
	)
	if err := row.Scan(&dist.ID, &dist.OrganizationID, &dist.Name, &contactName, &contactEmail, &createdAt); err != nil {
		return domain.Distributor{}, err
	}
	if contactName.Valid {
		dist.ContactName = contactName.String
	}
	if contactEmail.Valid {
		dist.ContactEmail = contactEmail.String
	}
	if createdAt.Valid {
		dist.CreatedAt = createdAt.Time
	}
	return dist, nil
}
