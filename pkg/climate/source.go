package climate

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Source yields one month of the temperature grid, in Kelvin.
type Source interface {
	Month(ctx context.Context, ym YearMonth) (*Grid, error)
}

// CSVSource reads monthly grids laid out as <Dir>/<YYYY>/<YYYYMM>.csv. Each
// file is a matrix with one row per latitude index, south first, and one
// column per longitude index. Blank cells are masked.
type CSVSource struct {
	Dir string
	// Rows and Cols default to the global grid.
	Rows, Cols int
}

// Path returns the file holding ym.
func (s CSVSource) Path(ym YearMonth) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%d", ym.Year), fmt.Sprintf("%d%02d.csv", ym.Year, ym.Month))
}

// Month loads the grid of ym.
func (s CSVSource) Month(ctx context.Context, ym YearMonth) (*Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(ym))
	if err != nil {
		return nil, fmt.Errorf("open grid %s: %w", ym, err)
	}
	defer f.Close()

	rows, cols := s.Rows, s.Cols
	if rows == 0 {
		rows = Height
	}
	if cols == 0 {
		cols = Width
	}
	g, err := ReadGrid(f, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("grid %s: %w", ym, err)
	}
	return g, nil
}

// ReadGrid parses a rows×cols matrix CSV. Blank cells and "--" are masked.
func ReadGrid(r io.Reader, rows, cols int) (*Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = cols
	cr.ReuseRecord = true
	g := NewGrid(rows, cols)
	for y := 0; ; y++ {
		rec, err := cr.Read()
		if err == io.EOF {
			if y != rows {
				return nil, fmt.Errorf("got %d rows, want %d", y, rows)
			}
			return g, nil
		}
		if err != nil {
			return nil, err
		}
		if y >= rows {
			return nil, fmt.Errorf("more than %d rows", rows)
		}
		for x, cell := range rec {
			cell = strings.TrimSpace(cell)
			if cell == "" || cell == masked {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", y, x, err)
			}
			g.Set(x, y, v)
		}
	}
}

// WriteGrid writes g as a matrix CSV, masked cells blank.
func WriteGrid(w io.Writer, g *Grid) error {
	cw := csv.NewWriter(w)
	rows, cols := g.Dims()
	rec := make([]string, cols)
	for y := range rows {
		for x := range cols {
			v := g.At(x, y)
			if isMasked(v) {
				rec[x] = ""
				continue
			}
			rec[x] = formatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
