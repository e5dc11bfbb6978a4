package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary columns, in output order.
var SummaryColumns = []string{"T", "T_max", "T_min", "T_sd", "T_diff"}

// Summary condenses a monthly temperature series.
type Summary struct {
	// Mean over all months.
	T float64
	// Warmest and coldest calendar month, averaged over the years.
	TMax, TMin float64
	// Population standard deviation over all months.
	TSD   float64
	TDiff float64
}

// Values returns the summary in SummaryColumns order.
func (s Summary) Values() []float64 {
	return []float64{s.T, s.TMax, s.TMin, s.TSD, s.TDiff}
}

// Summarize computes the summary of a series of whole years, January
// first.
func Summarize(monthly []float64) (Summary, error) {
	if len(monthly) == 0 || len(monthly)%12 != 0 {
		return Summary{}, fmt.Errorf("analysis: %d months is not a whole number of years", len(monthly))
	}
	years := len(monthly) / 12
	var calendar [12]float64
	for i, v := range monthly {
		calendar[i%12] += v
	}
	tmax, tmin := math.Inf(-1), math.Inf(1)
	for _, v := range calendar {
		v /= float64(years)
		tmax = max(tmax, v)
		tmin = min(tmin, v)
	}

	s := Summary{
		T:    stat.Mean(monthly, nil),
		TMax: tmax,
		TMin: tmin,
		TSD:  math.Sqrt(stat.PopVariance(monthly, nil)),
	}
	s.TDiff = s.TMax - s.TMin
	return s, nil
}
