// Package reports builds the stock ledger: per-product quantity and value
// movements over a period, with opening balances and running totals.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"smeerp/internal/core/apperror"
	"smeerp/internal/core/id"
)

// DateFilter is the report date range.
type DateFilter struct {
	DateFrom time.Time `json:"date_from"`
	DateTo   time.Time `json:"date_to"`

	// StrictRange applies both bounds. The period sums always use the strict
	// range; the flag is kept for callers that render the filter.
	StrictRange bool `json:"strict_range"`
}

// LocationOption is one entry of the location filter.
type LocationOption struct {
	ID       id.ID `json:"id"`
	Selected bool  `json:"selected"`
}

// Options is the report request as sent by the UI layer.
type Options struct {
	Date          DateFilter       `json:"date"`
	Locations     []LocationOption `json:"locations,omitempty"`
	UnfoldedLines []LineID         `json:"unfolded_lines,omitempty"`
	UnfoldAll     bool             `json:"unfold_all"`

	// PrintMode is a non-interactive render: every detail row is shown.
	PrintMode bool `json:"print_mode"`

	LinesOffset        int     `json:"lines_offset"`
	LinesRemaining     int     `json:"lines_remaining"`
	LinesProgress      decimal.Decimal `json:"lines_progress"`
	LineAmountProgress decimal.Decimal `json:"line_amount_progress"`
}

// Validate checks the date range and unfolded line ids.
func (o *Options) Validate() error {
	if o.Date.DateFrom.IsZero() || o.Date.DateTo.IsZero() {
		return apperror.NewInvalidInput(apperror.CodeInvalidDateRange, "date_from and date_to are required")
	}
	if o.Date.DateFrom.After(o.Date.DateTo) {
		return apperror.NewInvalidInput(apperror.CodeInvalidDateRange, "date_from must not be after date_to").
			WithDetail("date_from", o.Date.DateFrom).
			WithDetail("date_to", o.Date.DateTo)
	}
	for _, l := range o.UnfoldedLines {
		if l.Kind != KindProduct {
			return apperror.NewInvalidInput(apperror.CodeInvalidLineID, "only product lines can be unfolded").
				WithDetail("line_id", l.String())
		}
	}
	if o.LinesOffset < 0 || o.LinesRemaining < 0 {
		return apperror.NewValidation("pagination cursors must not be negative")
	}
	return nil
}

// SelectedLocations returns the ids of selected locations. A filter with
// nothing selected restricts nothing.
func (o *Options) SelectedLocations() []id.ID {
	var ids []id.ID
	for _, l := range o.Locations {
		if l.Selected {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// EffectiveUnfoldAll reports whether every product is unfolded: explicitly,
// or by a print render that names no unfolded lines.
func (o *Options) EffectiveUnfoldAll() bool {
	return o.UnfoldAll || (o.PrintMode && len(o.UnfoldedLines) == 0)
}

// IsUnfolded reports whether the product line is unfolded.
func (o *Options) IsUnfolded(productID id.ID) bool {
	if o.EffectiveUnfoldAll() {
		return true
	}
	want := ProductLineID(productID)
	for _, l := range o.UnfoldedLines {
		if l == want {
			return true
		}
	}
	return false
}

// UnfoldedProducts returns the product ids of the unfolded lines.
func (o *Options) UnfoldedProducts() []id.ID {
	ids := make([]id.ID, 0, len(o.UnfoldedLines))
	for _, l := range o.UnfoldedLines {
		ids = append(ids, l.ID)
	}
	return ids
}

// DateWindow selects stock move lines by date at day granularity.
// From nil means no lower bound; To is inclusive.
type DateWindow struct {
	From *time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w DateWindow) Contains(t time.Time) bool {
	if w.From != nil && t.Before(startOfDay(*w.From)) {
		return false
	}
	return t.Before(w.UpperExclusive())
}

// UpperExclusive is the first instant after the window.
func (w DateWindow) UpperExclusive() time.Time {
	return startOfDay(w.To).AddDate(0, 0, 1)
}

// LowerInclusive is the first instant of the window, or nil.
func (w DateWindow) LowerInclusive() *time.Time {
	if w.From == nil {
		return nil
	}
	from := startOfDay(*w.From)
	return &from
}

// PeriodWindow is [date_from, date_to].
func (o *Options) PeriodWindow() DateWindow {
	from := o.Date.DateFrom
	return DateWindow{From: &from, To: o.Date.DateTo}
}

// InitialWindow is everything up to the day before date_from.
func (o *Options) InitialWindow() DateWindow {
	return DateWindow{To: startOfDay(o.Date.DateFrom).AddDate(0, 0, -1)}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
