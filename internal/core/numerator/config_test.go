package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Key(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		reset Reset
		want  string
	}{
		{"yearly", ResetYearly, "scrap_2026"},
		{"monthly", ResetMonthly, "scrap_2026_03"},
		{"never", ResetNever, "scrap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Code: "scrap", Prefix: "SP", Reset: tt.reset}
			assert.Equal(t, tt.want, cfg.Key(date))
		})
	}

	assert.Equal(t, "inv", Config{Prefix: "INV"}.Key(date))
}

func TestConfig_Format(t *testing.T) {
	date := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "SP/2025/00012", DefaultConfig("scrap", "SP").Format(date, 12))
	assert.Equal(t, "INV-007", Config{Prefix: "INV", Separator: "-", PadWidth: 3}.Format(date, 7))
	assert.Equal(t, "SP/123456", Config{Prefix: "SP"}.Format(date, 123456))
}
