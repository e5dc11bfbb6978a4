package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/japaniel/sonority/pkg/climate"
	"github.com/japaniel/sonority/pkg/report"
)

// Text column names.
const (
	ColName      = "Name"
	ColMacroarea = "Macroarea"
	ColFamily    = "Family"
	ColGenus     = "Genus"
	ColMethod    = "Method"
)

// Row is one doculect or one group.
type Row struct {
	Text   []string
	Values []float64
	// Lon and Lat are kept for maps and never written.
	Lon, Lat float64
}

// Table is a set of rows with named text and numeric columns.
type Table struct {
	Text    []string
	Numeric []string
	Rows    []Row
}

// TextIndex returns the position of a text column or -1.
func (t *Table) TextIndex(name string) int { return slices.Index(t.Text, name) }

// NumericIndex returns the position of a numeric column or -1.
func (t *Table) NumericIndex(name string) int { return slices.Index(t.Numeric, name) }

// Column returns the values of a numeric column.
func (t *Table) Column(name string) ([]float64, error) {
	j := t.NumericIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("analysis: no column %q", name)
	}
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[j]
	}
	return out, nil
}

// Join builds one row per doculect that has climate data: name, macroarea,
// WALS family and genus, its indices and the temperature summary.
// Doculects without climate data are dropped and counted in the log.
func Join(log *slog.Logger, sonorities []report.SonorityRow, temps *climate.Temperatures) (*Table, error) {
	if log == nil {
		log = slog.Default()
	}
	t := &Table{Text: []string{ColName, ColMacroarea, ColFamily, ColGenus}}
	indices := -1
	for _, s := range sonorities {
		monthly := temps.Lookup(s.Name)
		if monthly == nil {
			continue
		}
		if indices < 0 {
			indices = len(s.Indices)
			for i := range indices {
				t.Numeric = append(t.Numeric, fmt.Sprintf("Index%d", i))
			}
			t.Numeric = append(t.Numeric, SummaryColumns...)
		}
		if len(s.Indices) != indices {
			return nil, fmt.Errorf("%s: %d indices, want %d", s.Name, len(s.Indices), indices)
		}
		sum, err := Summarize(monthly)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		family, genus, _ := strings.Cut(s.Classification, ".")
		t.Rows = append(t.Rows, Row{
			Text:   []string{s.Name, Macroarea(s.Lon, s.Lat), family, genus},
			Values: append(slices.Clone(s.Indices), sum.Values()...),
			Lon:    s.Lon,
			Lat:    s.Lat,
		})
	}
	log.Info("joined climate data", "doculects", len(sonorities), "with_climate", len(t.Rows))
	return t, nil
}

// Aggregation methods for GroupBy.
const (
	MethodMean   = "mean"
	MethodMedian = "median"
)

// GroupBy collapses rows sharing the value of a text column into two rows
// per group, the mean and the median of every numeric column. Groups are
// ordered by name.
func GroupBy(t *Table, key string) (*Table, error) {
	k := t.TextIndex(key)
	if k < 0 {
		return nil, fmt.Errorf("analysis: no column %q", key)
	}
	groups := map[string][]Row{}
	for _, r := range t.Rows {
		groups[r.Text[k]] = append(groups[r.Text[k]], r)
	}
	names := make([]string, 0, len(groups))
	for n := range groups {
		names = append(names, n)
	}
	slices.Sort(names)

	out := &Table{Text: []string{key, ColMethod}, Numeric: slices.Clone(t.Numeric)}
	for _, name := range names {
		rows := groups[name]
		for _, m := range []string{MethodMean, MethodMedian} {
			vals := make([]float64, len(t.Numeric))
			col := make([]float64, len(rows))
			for j := range t.Numeric {
				for i, r := range rows {
					col[i] = r.Values[j]
				}
				if m == MethodMean {
					vals[j] = stat.Mean(col, nil)
				} else {
					vals[j] = median(col)
				}
			}
			out.Rows = append(out.Rows, Row{Text: []string{name, m}, Values: vals})
		}
	}
	return out, nil
}

// median averages the two middle values of an even-sized sample.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := slices.Sorted(slices.Values(xs))
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// WriteCSV writes the text columns followed by the numeric ones.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	header := append(slices.Clone(t.Text), t.Numeric...)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, r := range t.Rows {
		copy(rec, r.Text)
		for j, v := range r.Values {
			rec[len(t.Text)+j] = formatFloat(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat writes the shortest representation, keeping a decimal point
// on whole numbers. Very small and very large magnitudes use exponents.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 0):
		if v > 0 {
			return "inf"
		}
		return "-inf"
	case v != 0 && (math.Abs(v) < 1e-4 || math.Abs(v) >= 1e16):
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
