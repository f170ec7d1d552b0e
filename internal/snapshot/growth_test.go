package snapshot

import (
	"testing"
	"time"

	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandt/screener/backend/internal/contracts"
)

func TestYoYGrowth(t *testing.T) {
	tests := []struct {
		name   string
		latest null.Float
		prior  null.Float
		want   null.Float
	}{
		{
			name:   "ten percent growth",
			latest: null.FloatFrom(110),
			prior:  null.FloatFrom(100),
			want:   null.FloatFrom(0.10),
		},
		{
			name:   "zero prior guards the division",
			latest: null.FloatFrom(50),
			prior:  null.FloatFrom(0),
			want:   null.Float{},
		},
		{
			name:   "null latest propagates",
			latest: null.Float{},
			prior:  null.FloatFrom(100),
			want:   null.Float{},
		},
		{
			name:   "null prior propagates",
			latest: null.FloatFrom(100),
			prior:  null.Float{},
			want:   null.Float{},
		},
		{
			name:   "zero latest is a value and yields minus one",
			latest: null.FloatFrom(0),
			prior:  null.FloatFrom(50),
			want:   null.FloatFrom(-1.0),
		},
		{
			name:   "negative prior normalizes by magnitude",
			latest: null.FloatFrom(50),
			prior:  null.FloatFrom(-100),
			want:   null.FloatFrom(1.5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YoYGrowth(tt.latest, tt.prior))
		})
	}
}

func TestCAGR3Yr(t *testing.T) {
	t.Run("ten percent compounded", func(t *testing.T) {
		// 100 * 1.1^3 = 133.1 back-computes to 10% per year
		got := CAGR3Yr(null.FloatFrom(133.1), null.FloatFrom(100))
		require.True(t, got.Valid)
		assert.InDelta(t, 0.10, got.Float64, 1e-9)
	})

	t.Run("degenerate inputs yield null", func(t *testing.T) {
		tests := []struct {
			name   string
			latest null.Float
			base   null.Float
		}{
			{"negative base", null.FloatFrom(100), null.FloatFrom(-5)},
			{"zero base", null.FloatFrom(100), null.FloatFrom(0)},
			{"null base", null.FloatFrom(100), null.Float{}},
			{"null latest", null.Float{}, null.FloatFrom(100)},
			{"negative ratio", null.FloatFrom(-50), null.FloatFrom(100)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, null.Float{}, CAGR3Yr(tt.latest, tt.base))
			})
		}
	})

	t.Run("zero latest collapses to minus one", func(t *testing.T) {
		got := CAGR3Yr(null.FloatFrom(0), null.FloatFrom(100))
		require.True(t, got.Valid)
		assert.InDelta(t, -1.0, got.Float64, 1e-9)
	})
}

// incomeSeries builds a date-descending annual series from revenue and
// net-income pairs, newest first.
func incomeSeries(pairs ...[2]null.Float) []contracts.IncomeStatement {
	stmts := make([]contracts.IncomeStatement, len(pairs))
	for i, p := range pairs {
		stmts[i] = contracts.IncomeStatement{
			CompanyID: 1,
			Date:      time.Date(2024-i, 12, 31, 0, 0, 0, 0, time.UTC),
			Period:    contracts.PeriodAnnual,
			Revenue:   p[0],
			NetIncome: p[1],
		}
	}
	return stmts
}

func TestRevenueGrowthYoY(t *testing.T) {
	t.Run("needs two periods", func(t *testing.T) {
		stmts := incomeSeries([2]null.Float{null.FloatFrom(100), {}})
		assert.Equal(t, null.Float{}, RevenueGrowthYoY(stmts))
		assert.Equal(t, null.Float{}, RevenueGrowthYoY(nil))
	})

	t.Run("latest over prior", func(t *testing.T) {
		stmts := incomeSeries(
			[2]null.Float{null.FloatFrom(110), {}},
			[2]null.Float{null.FloatFrom(100), {}},
		)
		got := RevenueGrowthYoY(stmts)
		require.True(t, got.Valid)
		assert.InDelta(t, 0.10, got.Float64, 1e-9)
	})

	t.Run("null prior revenue yields null", func(t *testing.T) {
		stmts := incomeSeries(
			[2]null.Float{null.FloatFrom(110), {}},
			[2]null.Float{{}, {}},
		)
		assert.Equal(t, null.Float{}, RevenueGrowthYoY(stmts))
	})
}

func TestRevenueGrowth3YrCAGR(t *testing.T) {
	t.Run("needs four periods", func(t *testing.T) {
		stmts := incomeSeries(
			[2]null.Float{null.FloatFrom(133.1), {}},
			[2]null.Float{null.FloatFrom(121), {}},
			[2]null.Float{null.FloatFrom(110), {}},
		)
		assert.Equal(t, null.Float{}, RevenueGrowth3YrCAGR(stmts))
	})

	t.Run("latest against three periods back", func(t *testing.T) {
		stmts := incomeSeries(
			[2]null.Float{null.FloatFrom(133.1), {}},
			[2]null.Float{null.FloatFrom(121), {}},
			[2]null.Float{null.FloatFrom(110), {}},
			[2]null.Float{null.FloatFrom(100), {}},
		)
		got := RevenueGrowth3YrCAGR(stmts)
		require.True(t, got.Valid)
		assert.InDelta(t, 0.10, got.Float64, 1e-9)
	})

	t.Run("non-positive base yields null", func(t *testing.T) {
		stmts := incomeSeries(
			[2]null.Float{null.FloatFrom(133.1), {}},
			[2]null.Float{null.FloatFrom(121), {}},
			[2]null.Float{null.FloatFrom(110), {}},
			[2]null.Float{null.FloatFrom(-5), {}},
		)
		assert.Equal(t, null.Float{}, RevenueGrowth3YrCAGR(stmts))
	})
}

func TestEarningsGrowthYoY(t *testing.T) {
	t.Run("latest over prior net income", func(t *testing.T) {
		stmts := incomeSeries(
			[2]null.Float{{}, null.FloatFrom(55)},
			[2]null.Float{{}, null.FloatFrom(50)},
		)
		got := EarningsGrowthYoY(stmts)
		require.True(t, got.Valid)
		assert.InDelta(t, 0.10, got.Float64, 1e-9)
	})

	t.Run("zero prior earnings yields null", func(t *testing.T) {
		stmts := incomeSeries(
			[2]null.Float{{}, null.FloatFrom(55)},
			[2]null.Float{{}, null.FloatFrom(0)},
		)
		assert.Equal(t, null.Float{}, EarningsGrowthYoY(stmts))
	})

	t.Run("loss to profit swing uses magnitude of prior", func(t *testing.T) {
		stmts := incomeSeries(
			[2]null.Float{{}, null.FloatFrom(50)},
			[2]null.Float{{}, null.FloatFrom(-100)},
		)
		got := EarningsGrowthYoY(stmts)
		require.True(t, got.Valid)
		assert.InDelta(t, 1.5, got.Float64, 1e-9)
	})
}
