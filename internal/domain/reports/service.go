package reports

import (
	"context"
	"fmt"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
	"smeerp/internal/core/tx"
	"smeerp/internal/domain/catalogs/currency"
	"smeerp/internal/domain/catalogs/product"
	"smeerp/pkg/logger"
)

// DefaultPageSize is the number of detail rows rendered per product before
// a load-more line.
const DefaultPageSize = 80

// Service renders stock ledger lines.
type Service struct {
	repo     Repository
	products product.Repository
	currency *currency.Currency
	pageSize int
	snapshot tx.Snapshotter
}

// NewService creates a stock ledger service. home supplies the zero test.
func NewService(repo Repository, products product.Repository, home *currency.Currency, pageSize int, snapshot tx.Snapshotter) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		repo:     repo,
		products: products,
		currency: home,
		pageSize: pageSize,
		snapshot: snapshot,
	}
}

// GetLines returns the report lines for opts. lineID targets one product
// line (expansion) or its load-more line (continuation). A positive
// lines_offset makes the request a continuation.
func (s *Service) GetLines(ctx context.Context, opts Options, lineID *LineID) ([]Line, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.LinesOffset > 0 && lineID == nil {
		return nil, apperror.NewInvalidInput(apperror.CodeInvalidLineID, "line_id is required to load more lines")
	}
	var productID *id.ID
	if lineID != nil {
		pid, err := lineID.ProductID()
		if err != nil {
			return nil, err
		}
		productID = &pid
	}

	var lines []Line
	err := s.snapshot.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if opts.LinesOffset > 0 {
			lines, err = s.loadMore(ctx, &opts, *productID)
		} else {
			lines, err = s.render(ctx, &opts, productID)
		}
		return err
	})
	return lines, err
}

// render is the full render: every product, or the single expanded one.
func (s *Service) render(ctx context.Context, opts *Options, expanded *id.ID) ([]Line, error) {
	results, err := s.aggregate(ctx, opts, expanded)
	if err != nil {
		return nil, fmt.Errorf("stock ledger: %w", err)
	}

	var (
		lines []Line
		total TotalLine
	)
	for _, r := range results {
		summary := summarize(r, opts, s.currency.IsZero)
		if expanded != nil {
			summary.Unfolded = true
		}
		lines = append(lines, summary)
		total.add(summary)

		if !summary.Unfolded {
			continue
		}

		limit := s.pageSize
		if opts.PrintMode {
			limit = 0
		}
		acc := running{Balance: summary.InitialBalance, Amount: summary.InitialAmount}
		detail, acc := renderRows(acc, r.Data.Rows, summary.ID, limit)
		lines = append(lines, detail...)

		if remaining := len(r.Data.Rows) - len(detail); remaining > 0 {
			lines = append(lines, &LoadMoreLine{
				ID:             LoadMoreLineID(r.Product.ID),
				Parent:         summary.ID,
				Offset:         len(detail),
				Remaining:      remaining,
				Progress:       acc.Balance,
				AmountProgress: acc.Amount,
			})
		}
	}

	if expanded == nil {
		lines = append(lines, &total)
	}

	logger.Debug(ctx, "stock ledger rendered",
		"products", len(results),
		"lines", len(lines),
		"expanded", expanded != nil,
	)
	return lines, nil
}

// loadMore continues a product's detail rows from the caller's cursor.
func (s *Service) loadMore(ctx context.Context, opts *Options, productID id.ID) ([]Line, error) {
	q := LinesQuery{
		Period:      opts.PeriodWindow(),
		LocationIDs: opts.SelectedLocations(),
		ProductIDs:  []id.ID{productID},
		Offset:      opts.LinesOffset,
	}
	limit := s.pageSize
	if opts.PrintMode {
		limit = 0
	} else {
		// One extra row tells whether another page exists.
		q.Limit = limit + 1
	}

	rows, err := s.repo.DetailRows(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("stock ledger load more: %w", err)
	}

	parent := ProductLineID(productID)
	acc := running{Balance: opts.LinesProgress, Amount: opts.LineAmountProgress}
	lines, acc := renderRows(acc, rows, parent, limit)

	if hasMore := len(rows) > len(lines); hasMore {
		remaining := opts.LinesRemaining - len(lines)
		if remaining < 1 {
			remaining = 1
		}
		lines = append(lines, &LoadMoreLine{
			ID:             LoadMoreLineID(productID),
			Parent:         parent,
			Offset:         opts.LinesOffset + len(lines),
			Remaining:      remaining,
			Progress:       acc.Balance,
			AmountProgress: acc.Amount,
		})
	}
	return lines, nil
}
