package climate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Located is a named coordinate, usually a doculect.
type Located struct {
	Name     string
	Lon, Lat float64
}

// Points converts coordinates to grid cells.
func Points(locs []Located) ([]Point, error) {
	out := make([]Point, len(locs))
	for i, l := range locs {
		p, err := CoordToPoint(l.Lon, l.Lat)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.Name, err)
		}
		out[i] = p
	}
	return out, nil
}

// WriteDoculects writes one row per location: the name followed by the
// monthly values of its cell. Missing values are written as "--".
func WriteDoculects(w io.Writer, locs []Located, s *Series) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(s.Months)+1)
	header = append(header, "doculect name")
	for _, ym := range s.Months {
		header = append(header, ym.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(header))
	for _, l := range locs {
		p, err := CoordToPoint(l.Lon, l.Lat)
		if err != nil {
			return fmt.Errorf("%s: %w", l.Name, err)
		}
		vals := s.Of(p)
		if vals == nil {
			return fmt.Errorf("%s: point %s was not collected", l.Name, p)
		}
		rec[0] = l.Name
		for j, v := range vals {
			if isMasked(v) {
				rec[j+1] = masked
			} else {
				rec[j+1] = formatValue(v)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Temperatures is a per-doculect monthly table read back from
// WriteDoculects output.
type Temperatures struct {
	Months []YearMonth
	Names  []string
	// Values is indexed [doculect][month].
	Values [][]float64
}

// Lookup returns the row of name, or nil.
func (t *Temperatures) Lookup(name string) []float64 {
	for i, n := range t.Names {
		if n == name {
			return t.Values[i]
		}
	}
	return nil
}

// Available returns the set of names with a complete series.
func (t *Temperatures) Available() map[string]bool {
	out := make(map[string]bool, len(t.Names))
	for _, n := range t.Names {
		out[n] = true
	}
	return out
}

// ReadDoculects parses a per-doculect temperature CSV. Rows containing a
// masked value are skipped: those doculects have no climate data.
func ReadDoculects(r io.Reader) (*Temperatures, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("temperatures header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("temperatures header has no months")
	}
	t := &Temperatures{}
	for _, h := range header[1:] {
		ym, err := ParseYearMonth(h)
		if err != nil {
			return nil, err
		}
		t.Months = append(t.Months, ym)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, err
		}
		if hasMasked(rec[1:]) {
			continue
		}
		vals := make([]float64, len(rec)-1)
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", rec[0], t.Months[j], err)
			}
			vals[j] = v
		}
		t.Names = append(t.Names, rec[0])
		t.Values = append(t.Values, vals)
	}
}

func hasMasked(cells []string) bool {
	for _, c := range cells {
		if strings.Contains(c, masked) {
			return true
		}
	}
	return false
}
