package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository wires a repository backed by pgxpool.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

// ExistingSKUs resolves which of the given SKUs exist for the organization.
// The result map contains an entry for every requested SKU.
func (r *productRepository) ExistingSKUs(ctx context.Context, organizationID uuid.UUID, skus []string) (map[string]bool, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("product repository not initialized")
	}

	known := make(map[string]bool, len(skus))
	for _, sku := range skus {
		known[sku] = false
	}
	if len(skus) == 0 {
		return known, nil
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT sku FROM products
		 WHERE organization_id = $1
		   AND sku = ANY($2)`,
		organizationID,
		skus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sku string
		if scanErr := rows.Scan(&sku); scanErr != nil {
			return nil, fmt.Errorf("failed to scan product sku: %w", scanErr)
		}
		known[sku] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", rowsErr)
	}

	return known, nil
}
