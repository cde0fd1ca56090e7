package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		l, i, e    int
		want       int
		wantBand   string
	}{
		{"bcp parser example", 4, 5, 3, 80, "Critical"},
		{"data access fallback", 3, 4, 3, 48, "Medium"},
		{"critical vendor fallback", 2, 5, 4, 53, "Medium"},
		{"generic fallback", 3, 3, 3, 36, "Low"},
		{"minimum", 1, 1, 1, 1, "Low"},
		{"clamped at 100", 5, 5, 5, 100, "Critical"},
		{"high band lower edge", 3, 5, 3, 60, "High"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.l, tt.i, tt.e)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantBand, PriorityFor(got))
		})
	}
}

func TestPriorityBands(t *testing.T) {
	assert.Equal(t, "Critical", PriorityFor(80))
	assert.Equal(t, "High", PriorityFor(79))
	assert.Equal(t, "High", PriorityFor(60))
	assert.Equal(t, "Medium", PriorityFor(59))
	assert.Equal(t, "Medium", PriorityFor(40))
	assert.Equal(t, "Low", PriorityFor(39))
	assert.Equal(t, "Low", PriorityFor(0))
}
