package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeTrend(t *testing.T) {
	e := NewEngine(DefaultParams())

	tests := []struct {
		name      string
		current   float64
		previous  float64
		direction string
		changePct float64
	}{
		{"no history is stable", 50, 0, TrendStable, 0},
		{"both zero is stable", 0, 0, TrendStable, 0},
		{"drop beyond band improves", 80, 100, TrendImproving, 20},
		{"rise beyond band declines", 125, 100, TrendDeclining, 25},
		{"rise within band is stable", 105, 100, TrendStable, 5},
		{"drop within band is stable", 95, 100, TrendStable, 5},
		{"exactly at band is stable", 110, 100, TrendStable, 10},
		{"exactly at negative band is stable", 90, 100, TrendStable, 10},
		{"collapse to zero improves", 0, 40, TrendImproving, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.AnalyzeTrend(tt.current, tt.previous)
			assert.Equal(t, tt.direction, got.Direction)
			assert.Equal(t, tt.changePct, got.ChangePct)
		})
	}
}

func TestAnalyzeTrend_CustomBand(t *testing.T) {
	params := DefaultParams()
	params.TrendBand = 25
	e := NewEngine(params)

	// 20% rise sits inside a widened band
	got := e.AnalyzeTrend(120, 100)
	assert.Equal(t, TrendStable, got.Direction)
	assert.Equal(t, 20.0, got.ChangePct)

	got = e.AnalyzeTrend(130, 100)
	assert.Equal(t, TrendDeclining, got.Direction)
}
