// Package report writes and reads the CSV tables produced by a scoring run.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/japaniel/sonority/pkg/corpus"
)

// SonorityRow is one line of sonorities.csv.
type SonorityRow struct {
	Name           string
	Lon, Lat       float64
	Classification string
	Meanings       int
	Words          int
	MeanWordLength float64
	// Indices holds one value per scale.
	Indices []float64
}

// sonorityColumns precede the index columns.
var sonorityColumns = []string{
	"doculect name", "longitude", "latitude", "classification",
	"meaning count", "word count", "mean word length",
}

// SonorityRows pairs doculects with their per-scale indices and mean word
// lengths. indices is indexed [scale][doculect]. Doculects without a
// coordinate get NaN.
func SonorityRows(doculects []*corpus.Doculect, indices [][]float64, lengths []float64) ([]SonorityRow, error) {
	if len(lengths) != len(doculects) {
		return nil, fmt.Errorf("report: %d word lengths for %d doculects", len(lengths), len(doculects))
	}
	for s, idx := range indices {
		if len(idx) != len(doculects) {
			return nil, fmt.Errorf("report: scale %d has %d indices for %d doculects", s, len(idx), len(doculects))
		}
	}
	rows := make([]SonorityRow, len(doculects))
	for i, d := range doculects {
		r := SonorityRow{
			Name:           d.Name,
			Lon:            math.NaN(),
			Lat:            math.NaN(),
			Classification: d.WALS,
			Meanings:       len(d.Synsets),
			Words:          d.WordCount(),
			MeanWordLength: lengths[i],
			Indices:        make([]float64, len(indices)),
		}
		if d.Coord != nil {
			r.Lon, r.Lat = d.Coord.Lon, d.Coord.Lat
		}
		for s := range indices {
			r.Indices[s] = indices[s][i]
		}
		rows[i] = r
	}
	return rows, nil
}

// WriteSonorities writes sonorities.csv. Word lengths and indices carry
// four decimals.
func WriteSonorities(w io.Writer, rows []SonorityRow) error {
	scales := 0
	if len(rows) > 0 {
		scales = len(rows[0].Indices)
	}
	header := append([]string{}, sonorityColumns...)
	for i := range scales {
		header = append(header, fmt.Sprintf("index%d", i))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if len(r.Indices) != scales {
			return fmt.Errorf("report: %s has %d indices, want %d", r.Name, len(r.Indices), scales)
		}
		rec := []string{
			r.Name,
			FormatFloat(r.Lon),
			FormatFloat(r.Lat),
			r.Classification,
			strconv.Itoa(r.Meanings),
			strconv.Itoa(r.Words),
			Fixed4(r.MeanWordLength),
		}
		for _, v := range r.Indices {
			rec = append(rec, Fixed4(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSonorities parses sonorities.csv. Index columns start after the
// mean word length column.
func ReadSonorities(r io.Reader) ([]SonorityRow, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("sonorities header: %w", err)
	}
	if len(header) < len(sonorityColumns) {
		return nil, fmt.Errorf("sonorities header has %d columns, want at least %d", len(header), len(sonorityColumns))
	}

	var out []SonorityRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := parseSonorityRow(rec)
		if err != nil {
			return nil, fmt.Errorf("sonorities line %d: %w", line, err)
		}
		out = append(out, row)
	}
}

func parseSonorityRow(rec []string) (SonorityRow, error) {
	var (
		row SonorityRow
		err error
	)
	row.Name = rec[0]
	row.Classification = rec[3]
	if row.Lon, err = parseFloat(rec[1]); err != nil {
		return row, fmt.Errorf("longitude: %w", err)
	}
	if row.Lat, err = parseFloat(rec[2]); err != nil {
		return row, fmt.Errorf("latitude: %w", err)
	}
	if row.Meanings, err = strconv.Atoi(rec[4]); err != nil {
		return row, fmt.Errorf("meaning count: %w", err)
	}
	if row.Words, err = strconv.Atoi(rec[5]); err != nil {
		return row, fmt.Errorf("word count: %w", err)
	}
	if row.MeanWordLength, err = parseFloat(rec[6]); err != nil {
		return row, fmt.Errorf("mean word length: %w", err)
	}
	for i, cell := range rec[len(sonorityColumns):] {
		v, err := parseFloat(cell)
		if err != nil {
			return row, fmt.Errorf("index%d: %w", i, err)
		}
		row.Indices = append(row.Indices, v)
	}
	return row, nil
}

// parseFloat accepts "nan" for missing values.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// Fixed4 formats v with four decimals; NaN is written as "nan".
func Fixed4(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// FormatFloat writes the shortest form of v with at least one decimal.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
