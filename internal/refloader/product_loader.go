package refloader

import (
	"context"
	"time"

	"github.com/growship/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

// ProductLoader batches SKU existence checks so row validation issues one
// reference-data query per pass instead of one per row. A loader is built per
// request because the organization scope is part of every lookup.
type ProductLoader struct {
	Loader *dataloader.Loader
}

func NewProductLoader(repo repository.ProductRepository, organizationID uuid.UUID) *ProductLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		skus := make([]string, len(keys))
		for i, k := range keys {
			skus[i] = k.String()
		}

		known, err := repo.ExistingSKUs(ctx, organizationID, skus)
		if err != nil {
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Build results in the same order as keys
		results := make([]*dataloader.Result, len(keys))
		for i, sku := range skus {
			results[i] = &dataloader.Result{Data: known[sku]}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &ProductLoader{Loader: loader}
}

// ExistsAll resolves a set of SKUs in one batch.
func (l *ProductLoader) ExistsAll(ctx context.Context, skus []string) (map[string]bool, []error) {
	keys := make(dataloader.Keys, len(skus))
	for i, sku := range skus {
		keys[i] = dataloader.StringKey(sku)
	}

	thunk := l.Loader.LoadMany(ctx, keys)
	values, errs := thunk()

	known := make(map[string]bool, len(skus))
	for i, sku := range skus {
		if i < len(values) {
			exists, _ := values[i].(bool)
			known[sku] = exists
		}
	}
	return known, errs
}
