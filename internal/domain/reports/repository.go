package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/id"
)

// BucketKey names an aggregate bucket.
type BucketKey string

const (
	BucketSum     BucketKey = "sum"
	BucketInitial BucketKey = "initial_balance"
)

// Bucket is the aggregate of one product over one window.
type Bucket struct {
	ProductID id.ID           `db:"product_id"`
	Key       BucketKey       `db:"key"`
	Debit     decimal.Decimal `db:"debit"`
	Credit    decimal.Decimal `db:"credit"`
	Balance   decimal.Decimal `db:"balance"`
	Cost      decimal.Decimal `db:"cost"`
	Amount    decimal.Decimal `db:"amount"`
}

// RowBranch tells which sub-query produced a detail row.
type RowBranch int

const (
	// BranchValuation rows come from valuation layers.
	BranchValuation RowBranch = iota
	// BranchTransferIn rows are internal transfers into a selected location.
	BranchTransferIn
	// BranchTransferOut rows are internal transfers out of a selected location.
	BranchTransferOut
)

// DetailRow is one stock move line contribution.
type DetailRow struct {
	ID           id.ID           `db:"id"`
	Branch       RowBranch       `db:"branch"`
	ProductID    id.ID           `db:"product_id"`
	Date         time.Time       `db:"date"`
	Origin       *string         `db:"origin"`
	DateExpected *time.Time      `db:"date_expected"`
	UomName      *string         `db:"uom_name"`
	Reference    *string         `db:"reference"`
	MoveName     *string         `db:"move_name"`
	PartnerName  *string         `db:"partner_name"`
	SourceName   *string         `db:"source_name"`
	DestName     *string         `db:"dest_name"`
	Debit        decimal.Decimal `db:"debit"`
	Credit       decimal.Decimal `db:"credit"`
	Balance      decimal.Decimal `db:"balance"`
	Cost         decimal.Decimal `db:"cost"`
	Amount       decimal.Decimal `db:"amount"`
}

// SumsQuery selects the sum and initial_balance buckets.
type SumsQuery struct {
	Period      DateWindow
	Initial     DateWindow
	LocationIDs []id.ID

	// ProductID restricts the query to one expanded product.
	ProductID *id.ID
}

// LinesQuery selects detail rows ordered by date.
type LinesQuery struct {
	Period      DateWindow
	LocationIDs []id.ID

	// AllProducts ignores ProductIDs.
	AllProducts bool
	ProductIDs  []id.ID

	Offset int
	// Limit 0 means no limit.
	Limit int
}

// Repository runs the ledger queries against the store.
type Repository interface {
	SumBuckets(ctx context.Context, q SumsQuery) ([]Bucket, error)
	DetailRows(ctx context.Context, q LinesQuery) ([]DetailRow, error)
}
