package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type importLogRepository struct {
	pool *pgxpool.Pool
}

// NewImportLogRepository wires a repository backed by pgxpool.
func NewImportLogRepository(pool *pgxpool.Pool) ImportLogRepository {
	return &importLogRepository{pool: pool}
}

func (r *importLogRepository) Append(ctx context.Context, entry domain.ImportLogEntry) (domain.ImportLogEntry, error) {
	if r.pool == nil {
		return domain.ImportLogEntry{}, fmt.Errorf("import log repository not initialized")
	}

	var distributorID any
	if entry.DistributorID != uuid.Nil {
		distributorID = entry.DistributorID
	}

	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO import_logs (id, organization_id, distributor_id, user_id, kind, file_hash, file_name,
		                          total_rows, successful_rows, failed_rows, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		entry.ID,
		entry.OrganizationID,
		distributorID,
		entry.UserID,
		string(entry.Kind),
		entry.FileHash,
		entry.FileName,
		entry.TotalRows,
		entry.SuccessfulRows,
		entry.FailedRows,
		string(entry.Status),
	)

	var createdAt pgtype.Timestamptz
	if err := row.Scan(&entry.ID, &createdAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			prior, lookupErr := r.FindAccepted(ctx, domain.FileFingerprint{
				Hash:           entry.FileHash,
				OrganizationID: entry.OrganizationID,
				UserID:         entry.UserID,
				Kind:           entry.Kind,
			})
			if lookupErr == nil && prior != nil {
				return domain.ImportLogEntry{}, domain.DuplicateError(*prior)
			}
			return domain.ImportLogEntry{}, domain.NewError(domain.ErrDuplicateImport, "file already imported")
		}
		return domain.ImportLogEntry{}, fmt.Errorf("failed to append import log: %w", err)
	}
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}

	return entry, nil
}

func (r *importLogRepository) FindAccepted(ctx context.Context, fp domain.FileFingerprint) (*domain.PriorImport, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("import log repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, created_at, successful_rows, file_name
		 FROM import_logs
		 WHERE file_hash = $1
		   AND organization_id = $2
		   AND user_id = $3
		   AND kind = $4
		   AND successful_rows > 0
		 ORDER BY created_at ASC
		 LIMIT 1`,
		fp.Hash,
		fp.OrganizationID,
		fp.UserID,
		string(fp.Kind),
	)

	var prior domain.PriorImport
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&prior.ID, &createdAt, &prior.RecordCount, &prior.FileName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up prior import: %w", err)
	}
	if createdAt.Valid {
		prior.ImportedAt = createdAt.Time
	}

	return &prior, nil
}

func (r *importLogRepository) List(ctx context.Context, organizationID uuid.UUID, userID uuid.UUID, limit int, offset int) ([]domain.ImportLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("import log repository not initialized")
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, organization_id, distributor_id, user_id, kind, file_hash, file_name,
		        total_rows, successful_rows, failed_rows, status, created_at
		 FROM import_logs
		 WHERE organization_id = $1
		   AND user_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		organizationID,
		userID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	entries := []domain.ImportLogEntry{}
	for rows.Next() {
		var (
			entry         domain.ImportLogEntry
			distributorID pgtype.UUID
			kind          string
			status        string
			createdAt     pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.OrganizationID,
			&distributorID,
			&entry.UserID,
			&kind,
			&entry.FileHash,
			&entry.FileName,
			&entry.TotalRows,
			&entry.SuccessfulRows,
			&entry.FailedRows,
			&status,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", scanErr)
		}

		if distributorID.Valid {
			entry.DistributorID = distributorID.Bytes
		}
		entry.Kind = domain.ImportKind(kind)
		entry.Status = domain.ImportStatus(status)
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate import logs: %w", rowsErr)
	}

	return entries, nil
}
