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

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository wires a repository backed by pgxpool.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

// GetByUserID joins the profile with its organization so the auto-populator
// gets the organization display name without a second lookup.
func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (domain.ActorProfile, error) {
	if r.pool == nil {
		return domain.ActorProfile{}, fmt.Errorf("profile repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT p.user_id, p.role, p.organization_id, o.name, p.distributor_id, p.contact_name, p.contact_email
		 FROM user_profiles p
		 JOIN organizations o ON o.id = p.organization_id
		 WHERE p.user_id = $1`,
		userID,
	)

	var (
		profile       domain.ActorProfile
		role          string
		distributorID pgtype.UUID
		contactName   pgtype.Text
		contactEmail  pgtype.Text
	)
	if err := row.Scan(
		&profile.UserID,
		&role,
		&profile.OrganizationID,
		&profile.OrganizationName,
		&distributorID,
		&contactName,
		&contactEmail,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ActorProfile{}, fmt.Errorf("profile for user %s not found", userID)
		}
		return domain.ActorProfile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Role = domain.Role(role)
	if distributorID.Valid {
		profile.DistributorID = distributorID.Bytes
	}
	if contactName.Valid {
		profile.ContactName = contactName.String
	}
	if contactEmail.Valid {
		profile.ContactEmail = contactEmail.String
	}

	return profile, nil
}
