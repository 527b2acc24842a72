package repository

import (
	"context"
	"fmt"

	"github.com/growship/backend/internal/db"
	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// kindTables maps an import kind to the table its committed rows land in.
// All three tables share the imported-record column set.
var kindTables = map[domain.ImportKind]string{
	domain.ImportKindOrders:  "orders",
	domain.ImportKindSales:   "sales_records",
	domain.ImportKindTargets: "sales_targets",
}

type recordRepository struct {
	conn *db.Connection
}

// NewRecordRepository wires a repository over the shared connection so batch
// inserts run inside its transaction helper.
func NewRecordRepository(conn *db.Connection) RecordRepository {
	return &recordRepository{conn: conn}
}

// CreateBatch inserts the records inside a single transaction. A failure
// anywhere rolls back the whole batch so the caller can account for it as one
// unit and keep going with the next batch.
func (r *recordRepository) CreateBatch(ctx context.Context, kind domain.ImportKind, opts BatchOptions, records []domain.ImportRecord) error {
	if r.conn == nil {
		return fmt.Errorf("record repository not initialized")
	}
	table, ok := kindTables[kind]
	if !ok {
		return fmt.Errorf("no target table for import kind %q", kind)
	}
	if len(records) == 0 {
		return nil
	}

	sql := fmt.Sprintf(
		`INSERT INTO %s (id, organization_id, distributor_id, user_id, import_id, row_number,
		                 reference, record_date, sku, product_name, quantity, unit_price,
		                 total_amount, currency, contact_name, contact_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		table,
	)

	batch := &pgx.Batch{}
	for _, rec := range records {
		var distributorID any
		if rec.DistributorID != uuid.Nil {
			distributorID = rec.DistributorID
		}
		var sku any
		if rec.SKU != "" {
			sku = rec.SKU
		}
		batch.Queue(sql,
			uuid.New(),
			opts.OrganizationID,
			distributorID,
			opts.UserID,
			opts.ImportID,
			rec.RowNumber,
			rec.Reference,
			rec.RecordDate,
			sku,
			rec.ProductName,
			rec.Quantity,
			rec.UnitPrice.String(),
			rec.TotalAmount.String(),
			rec.Currency,
			rec.ContactName,
			rec.ContactEmail,
		)
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		results := tx.SendBatch(ctx, batch)
		for range records {
			if _, execErr := results.Exec(); execErr != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert record batch: %w", execErr)
			}
		}
		if closeErr := results.Close(); closeErr != nil {
			return fmt.Errorf("failed to close record batch: %w", closeErr)
		}
		return nil
	})
}

// DeleteByImport removes the rows stamped with the given import id.
func (r *recordRepository) DeleteByImport(ctx context.Context, kind domain.ImportKind, importID uuid.UUID) error {
	if r.conn == nil {
		return fmt.Errorf("record repository not initialized")
	}
	table, ok := kindTables[kind]
	if !ok {
		return fmt.Errorf("no target table for import kind %q", kind)
	}

	if _, err := r.conn.Pool.Exec(
		ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE import_id = $1`, table),
		importID,
	); err != nil {
		return fmt.Errorf("failed to delete records of import %s: %w", importID, err)
	}
	return nil
}
