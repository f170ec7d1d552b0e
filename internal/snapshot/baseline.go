package snapshot

import (
	"math"

	"github.com/guregu/null/v5"
)

// baselineWindow is the number of historical periods behind the current
// one that form the "historical normal".
const baselineWindow = 5

// Average computes the mean of the non-null values in a series. Null when
// no non-null values remain; an all-null or empty series is "no history",
// never zero.
func Average(values []null.Float) null.Float {
	sum := 0.0
	count := 0
	for _, v := range values {
		if !v.Valid {
			continue
		}
		sum += v.Float64
		count++
	}
	if count == 0 {
		return null.Float{}
	}
	return null.FloatFrom(sum / float64(count))
}

// Baseline computes the trailing 5-period average of a date-descending
// series: index 0 is the current period and is skipped, then the next up
// to 5 periods are averaged with nulls ignored.
func Baseline(values []null.Float) null.Float {
	if len(values) <= 1 {
		return null.Float{}
	}
	end := 1 + baselineWindow
	if end > len(values) {
		end = len(values)
	}
	return Average(values[1:end])
}

// PercentVsAverage computes the signed relative deviation of a current
// value from its baseline average, (current - average) / abs(average).
// Null when either input is null or the average is exactly zero; the zero
// guard protects the division only and carries no "zero means missing"
// semantics.
func PercentVsAverage(current, average null.Float) null.Float {
	if !current.Valid || !average.Valid || average.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom((current.Float64 - average.Float64) / math.Abs(average.Float64))
}
