package snapshot

import (
	"math"

	"github.com/guregu/null/v5"

	"github.com/brandt/screener/backend/internal/contracts"
)

// YoYGrowth computes (latest - prior) / abs(prior). Null when either value
// is null or the prior is exactly zero. A zero latest value is legitimate
// input and yields -1.0; only the divisor carries the zero guard.
func YoYGrowth(latest, prior null.Float) null.Float {
	if !latest.Valid || !prior.Valid || prior.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom((latest.Float64 - prior.Float64) / math.Abs(prior.Float64))
}

// CAGR3Yr computes the 3-year compound annual growth rate
// (latest/base)^(1/3) - 1 from the value three periods back. Null when
// either value is null, the base is not strictly positive, or the ratio
// is negative (a fractional exponent over a negative base is degenerate
// arithmetic, not a growth figure).
func CAGR3Yr(latest, base null.Float) null.Float {
	if !latest.Valid || !base.Valid || base.Float64 <= 0 {
		return null.Float{}
	}
	ratio := latest.Float64 / base.Float64
	if ratio < 0 {
		return null.Float{}
	}
	return null.FloatFrom(math.Pow(ratio, 1.0/3.0) - 1)
}

// RevenueGrowthYoY computes year-over-year revenue growth from a
// date-descending income series. Needs at least 2 periods.
func RevenueGrowthYoY(stmts []contracts.IncomeStatement) null.Float {
	if len(stmts) < 2 {
		return null.Float{}
	}
	return YoYGrowth(stmts[0].Revenue, stmts[1].Revenue)
}

// RevenueGrowth3YrCAGR computes the 3-year revenue CAGR from a
// date-descending income series. Needs at least 4 periods (current plus
// three years back).
func RevenueGrowth3YrCAGR(stmts []contracts.IncomeStatement) null.Float {
	if len(stmts) < 4 {
		return null.Float{}
	}
	return CAGR3Yr(stmts[0].Revenue, stmts[3].Revenue)
}

// EarningsGrowthYoY computes year-over-year net-income growth from a
// date-descending income series. Needs at least 2 periods.
func EarningsGrowthYoY(stmts []contracts.IncomeStatement) null.Float {
	if len(stmts) < 2 {
		return null.Float{}
	}
	return YoYGrowth(stmts[0].NetIncome, stmts[1].NetIncome)
}
