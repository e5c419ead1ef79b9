package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Trend
	}{
		{"long", TrendLong},
		{" LONG ", TrendLong},
		{"做多", TrendLong},
		{"short", TrendShort},
		{"做空", TrendShort},
		{"none", TrendNone},
		{"无信号", TrendNone},
		{"", TrendNone},
	}
	for _, tt := range tests {
		got, err := ParseTrend(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTrend("sideways")
	assert.Error(t, err)
}

func TestTrendLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "LONG", TrendLong.Label())
	assert.Equal(t, "SHORT", TrendShort.Label())
	assert.Equal(t, "NONE", TrendNone.Label())
	assert.Equal(t, "NONE", Trend("").Label())
}
