package reports

import (
	"context"
	"fmt"

	"smeerp/internal/core/id"
	"smeerp/internal/domain/catalogs/product"
)

// ProductData is everything the renderer needs for one product.
type ProductData struct {
	Sum     *Bucket
	Initial *Bucket
	Rows    []DetailRow
}

// ProductResult pairs a product with its data, in store order.
type ProductResult struct {
	Product *product.Product
	Data    *ProductData
}

// aggregate runs the sums query, the detail query when lines are needed,
// and resolves products.
func (s *Service) aggregate(ctx context.Context, opts *Options, expanded *id.ID) ([]ProductResult, error) {
	locations := opts.SelectedLocations()

	buckets, err := s.repo.SumBuckets(ctx, SumsQuery{
		Period:      opts.PeriodWindow(),
		Initial:     opts.InitialWindow(),
		LocationIDs: locations,
		ProductID:   expanded,
	})
	if err != nil {
		return nil, fmt.Errorf("sum buckets: %w", err)
	}

	byProduct := s.groupBuckets(buckets)
	if expanded != nil {
		if _, ok := byProduct[*expanded]; !ok {
			byProduct[*expanded] = &ProductData{}
		}
	}

	unfoldAll := opts.EffectiveUnfoldAll()
	if expanded != nil || unfoldAll || len(opts.UnfoldedLines) > 0 {
		q := LinesQuery{
			Period:      opts.PeriodWindow(),
			LocationIDs: locations,
		}
		switch {
		case expanded != nil:
			q.ProductIDs = []id.ID{*expanded}
		case unfoldAll:
			q.AllProducts = true
		default:
			q.ProductIDs = opts.UnfoldedProducts()
		}

		rows, err := s.repo.DetailRows(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("detail rows: %w", err)
		}
		for _, row := range rows {
			data, ok := byProduct[row.ProductID]
			if !ok {
				continue
			}
			data.Rows = append(data.Rows, row)
		}
	}

	products, err := s.resolveProducts(ctx, byProduct, expanded)
	if err != nil {
		return nil, err
	}

	results := make([]ProductResult, 0, len(products))
	for _, p := range products {
		data, ok := byProduct[p.ID]
		if !ok {
			continue
		}
		results = append(results, ProductResult{Product: p, Data: data})
	}
	return results, nil
}

// groupBuckets keeps sum buckets with movement and initial buckets with a
// non-zero balance, under the home currency zero test.
func (s *Service) groupBuckets(buckets []Bucket) map[id.ID]*ProductData {
	byProduct := make(map[id.ID]*ProductData)
	get := func(pid id.ID) *ProductData {
		data, ok := byProduct[pid]
		if !ok {
			data = &ProductData{}
			byProduct[pid] = data
		}
		return data
	}

	for i := range buckets {
		b := &buckets[i]
		switch b.Key {
		case BucketSum:
			if !s.currency.IsZero(b.Debit) || !s.currency.IsZero(b.Credit) {
				get(b.ProductID).Sum = b
			}
		case BucketInitial:
			if !s.currency.IsZero(b.Balance) {
				get(b.ProductID).Initial = b
			}
		}
	}
	return byProduct
}

func (s *Service) resolveProducts(ctx context.Context, byProduct map[id.ID]*ProductData, expanded *id.ID) ([]*product.Product, error) {
	if expanded != nil {
		p, err := s.products.GetByID(ctx, *expanded)
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", expanded, err)
		}
		return []*product.Product{p}, nil
	}
	if len(byProduct) == 0 {
		return nil, nil
	}

	ids := make([]id.ID, 0, len(byProduct))
	for pid := range byProduct {
		ids = append(ids, pid)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}
