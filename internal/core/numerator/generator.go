package numerator

import (
	"context"
	"time"
)

// Generator names stock documents when they are validated. date is the
// document's effective date, so a scrap backdated into last year takes a
// number from last year's sequence.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, date time.Time) (string, error)
}
