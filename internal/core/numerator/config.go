// Package numerator names stock documents (SP/2026/00012, INV/2026/00003)
// from per-period sequences.
package numerator

import (
	"fmt"
	"strings"
	"time"
)

// Strategy chooses how numbers are taken from the sequence table.
type Strategy int

const (
	// StrategyStrict takes every number inside the document's transaction,
	// so a rolled back validation leaves no gap.
	StrategyStrict Strategy = iota

	// StrategyCached reserves RangeSize numbers at a time. Restarts leave gaps.
	StrategyCached
)

type Options struct {
	Strategy  Strategy
	RangeSize int64 // StrategyCached only; default 50
}

// DefaultOptions returns strict numbering.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Reset says when a sequence starts over at 1.
type Reset int

const (
	ResetNever Reset = iota
	ResetYearly
	ResetMonthly
)

// Config describes one sequence and how its numbers are rendered.
type Config struct {
	// Code keys the sequence row; the lowercased prefix when empty.
	Code      string
	Prefix    string
	Separator string // default "/"

	IncludeYear bool
	PadWidth    int // default 5
	Reset       Reset
}

// DefaultConfig renders PREFIX/YYYY/00001 and restarts every year.
func DefaultConfig(code, prefix string) Config {
	return Config{
		Code:        code,
		Prefix:      prefix,
		Separator:   "/",
		IncludeYear: true,
		PadWidth:    5,
		Reset:       ResetYearly,
	}
}

// Key is the sequence row that numbers documents dated date.
func (c Config) Key(date time.Time) string {
	code := c.Code
	if code == "" {
		code = strings.ToLower(c.Prefix)
	}
	switch c.Reset {
	case ResetYearly:
		return code + "_" + date.Format("2006")
	case ResetMonthly:
		return code + "_" + date.Format("2006_01")
	default:
		return code
	}
}

// Format renders counter n for a document dated date.
func (c Config) Format(date time.Time, n int64) string {
	pad := c.PadWidth
	if pad <= 0 {
		pad = 5
	}
	sep := c.Separator
	if sep == "" {
		sep = "/"
	}
	parts := []string{c.Prefix}
	if c.IncludeYear {
		parts = append(parts, date.Format("2006"))
	}
	parts = append(parts, fmt.Sprintf("%0*d", pad, n))
	return strings.Join(parts, sep)
}
