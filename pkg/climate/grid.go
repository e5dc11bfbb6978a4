// Package climate reads gridded monthly air temperature and looks it up
// by geographic coordinate.
package climate

import (
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"
	"gonum.org/v1/gonum/mat"
)

// Global 0.1° grid geometry. Cell centres start at (-179.95, -59.95).
const (
	Width     = 3600
	Height    = 1500
	Step      = 0.1
	LonOrigin = -179.95
	LatOrigin = -59.95
)

// MaxRing is the widest neighbour ring searched for a masked cell.
const MaxRing = 5

// ErrOffGrid is returned for a coordinate south of the grid or north of it.
var ErrOffGrid = errors.New("climate: coordinate outside the grid")

// Point is a grid cell; X indexes longitude and Y latitude.
type Point struct {
	X, Y uint16
}

func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.X, p.Y) }

// Centre returns the coordinate of the cell centre.
func (p Point) Centre() (lon, lat float64) {
	return roundTo(LonOrigin+float64(p.X)*Step, 2), roundTo(LatOrigin+float64(p.Y)*Step, 2)
}

// CoordToPoint returns the cell containing (lon, lat). Longitude wraps
// around the antimeridian.
func CoordToPoint(lon, lat float64) (Point, error) {
	x := int(math.Round((cellCentre(lon) - LonOrigin) * 10))
	y := int(math.Round((cellCentre(lat) - LatOrigin) * 10))
	x = ((x % Width) + Width) % Width
	if y < 0 || y >= Height {
		return Point{}, fmt.Errorf("%w: (%g, %g)", ErrOffGrid, lon, lat)
	}
	px, err := safecast.Conv[uint16](x)
	if err != nil {
		return Point{}, err
	}
	py, err := safecast.Conv[uint16](y)
	if err != nil {
		return Point{}, err
	}
	return Point{X: px, Y: py}, nil
}

// cellCentre snaps a degree value to the centre of its 0.1° cell. Negative
// values are pushed one cell down before truncation.
func cellCentre(deg float64) float64 {
	v := deg * 10
	if v < 0 {
		v--
	}
	return roundTo(0.05+math.Trunc(v)/10, 2)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Grid is one month of cell values. Masked cells hold NaN.
type Grid struct {
	m *mat.Dense
}

// NewGrid returns a rows×cols grid with every cell masked.
func NewGrid(rows, cols int) *Grid {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.NaN()
	}
	return &Grid{m: mat.NewDense(rows, cols, data)}
}

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid { return &Grid{m: mat.DenseCopyOf(g.m)} }

// Dims returns rows (latitude) and columns (longitude).
func (g *Grid) Dims() (rows, cols int) { return g.m.Dims() }

// At returns the value at column x, row y. Indices wrap around both axes.
func (g *Grid) At(x, y int) float64 {
	r, c := g.m.Dims()
	return g.m.At(((y%r)+r)%r, ((x%c)+c)%c)
}

// Set stores v at column x, row y.
func (g *Grid) Set(x, y int, v float64) { g.m.Set(y, x, v) }

// Masked reports whether the cell has no value.
func (g *Grid) Masked(x, y int) bool { return math.IsNaN(g.At(x, y)) }

// Lookup returns the value at p. With neighbours set, a masked cell takes
// the first unmasked value found on the rings around it, up to MaxRing
// cells away. NaN means no value was found.
func (g *Grid) Lookup(p Point, neighbours bool) float64 {
	x, y := int(p.X), int(p.Y)
	if v := g.At(x, y); !math.IsNaN(v) || !neighbours {
		return v
	}
	for offset := 1; offset <= MaxRing; offset++ {
		for _, n := range ring(x, y, offset) {
			if v := g.At(n[0], n[1]); !math.IsNaN(v) {
				return v
			}
		}
	}
	return math.NaN()
}

// ring lists the cells at Chebyshev distance offset from (x, y): for each
// d in [-offset, offset] the left, bottom, right and top candidates.
func ring(x, y, offset int) [][2]int {
	out := make([][2]int, 0, 8*offset+4)
	for d := -offset; d <= offset; d++ {
		out = append(out,
			[2]int{x - offset, y + d},
			[2]int{x + d, y - offset},
			[2]int{x + offset, y + d},
			[2]int{x + d, y + offset},
		)
	}
	return out
}

// Add accumulates o into g cell by cell. A cell masked in either stays
// masked.
func (g *Grid) Add(o *Grid) {
	g.m.Add(g.m, o.m)
}

// Scale multiplies every cell by f.
func (g *Grid) Scale(f float64) {
	g.m.Scale(f, g.m)
}

// Apply replaces every cell with fn of its value.
func (g *Grid) Apply(fn func(v float64) float64) {
	g.m.Apply(func(_, _ int, v float64) float64 { return fn(v) }, g.m)
}
