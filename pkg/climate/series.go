package climate

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// KelvinOffset converts Kelvin to degrees Celsius.
const KelvinOffset = 273.15

// masked is how a missing value is written.
const masked = "--"

// YearMonth names one monthly grid.
type YearMonth struct {
	Year, Month int
}

func (ym YearMonth) String() string { return fmt.Sprintf("%d/%d", ym.Year, ym.Month) }

// ParseYearMonth reads the "YYYY/M" form.
func ParseYearMonth(s string) (YearMonth, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return YearMonth{}, fmt.Errorf("climate: bad month %q", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return YearMonth{}, fmt.Errorf("climate: bad month %q: %w", s, err)
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("climate: bad month %q", s)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// Months lists every month from Jan firstYear to Dec lastYear.
func Months(firstYear, lastYear int) []YearMonth {
	var out []YearMonth
	for y := firstYear; y <= lastYear; y++ {
		for m := 1; m <= 12; m++ {
			out = append(out, YearMonth{y, m})
		}
	}
	return out
}

// Series holds the monthly temperature of a set of points in °C.
// Values is indexed [point][month]; NaN is a missing value.
type Series struct {
	Months []YearMonth
	Points []Point
	Values [][]float64

	index map[Point]int
}

// Of returns the monthly values of p, or nil if p was not collected.
func (s *Series) Of(p Point) []float64 {
	if s.index == nil {
		s.index = make(map[Point]int, len(s.Points))
		for i, q := range s.Points {
			s.index[q] = i
		}
	}
	i, ok := s.index[p]
	if !ok {
		return nil
	}
	return s.Values[i]
}

// CollectOptions tunes Collect.
type CollectOptions struct {
	// Neighbours fills masked cells from the surrounding rings.
	Neighbours bool
	// Workers bounds concurrent month reads; 0 uses GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Collect reads every month from src and extracts the values of points,
// converted to °C and rounded to 3 decimals. Duplicate points are
// collected once; points are ordered by row, then column.
func Collect(ctx context.Context, src Source, points []Point, months []YearMonth, opts CollectOptions) (*Series, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	pts := slices.Clone(points)
	slices.SortFunc(pts, func(a, b Point) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	pts = slices.Compact(pts)

	s := &Series{Months: slices.Clone(months), Points: pts, Values: make([][]float64, len(pts))}
	for i := range s.Values {
		s.Values[i] = make([]float64, len(months))
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for j, ym := range months {
		g.Go(func() error {
			grid, err := src.Month(gctx, ym)
			if err != nil {
				return err
			}
			// each goroutine owns column j
			for i, p := range pts {
				s.Values[i][j] = toCelsius(grid.Lookup(p, opts.Neighbours))
			}
			log.Info("month collected", "month", ym.String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

func toCelsius(k float64) float64 {
	if math.IsNaN(k) {
		return k
	}
	return roundTo(k-KelvinOffset, 3)
}

// GlobalMean averages every month of src cell by cell, in °C. A cell
// masked in any month is masked in the result.
func GlobalMean(ctx context.Context, src Source, months []YearMonth, log *slog.Logger) (*Grid, error) {
	if len(months) == 0 {
		return nil, fmt.Errorf("climate: no months to average")
	}
	if log == nil {
		log = slog.Default()
	}
	var sum *Grid
	for _, ym := range months {
		g, err := src.Month(ctx, ym)
		if err != nil {
			return nil, err
		}
		if sum == nil {
			sum = g
			log.Info("month averaged", "month", ym.String())
			continue
		}
		r1, c1 := sum.Dims()
		if r2, c2 := g.Dims(); r1 != r2 || c1 != c2 {
			return nil, fmt.Errorf("climate: grid %s is %dx%d, want %dx%d", ym, r2, c2, r1, c1)
		}
		sum.Add(g)
		log.Info("month averaged", "month", ym.String())
	}
	sum.Scale(1 / float64(len(months)))
	sum.Apply(toCelsius)
	return sum, nil
}

func isMasked(v float64) bool { return math.IsNaN(v) }

// formatValue writes v the way the temperature tables always have: shortest
// representation, with a trailing ".0" for whole numbers.
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
