package climate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordToPoint(t *testing.T) {
	cases := []struct {
		lon, lat float64
		want     Point
	}{
		{0, 0, Point{1800, 600}},
		{-1, 52, Point{1789, 1120}},
		{-0.05, 0.05, Point{1799, 600}},
		{-179.99, -59.99, Point{0, 0}},
		{179.99, 89.99, Point{3599, 1499}},
		{180, 10, Point{0, 700}},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%g,%g", c.lon, c.lat), func(t *testing.T) {
			p, err := CoordToPoint(c.lon, c.lat)
			require.NoError(t, err)
			assert.Equal(t, c.want, p)
		})
	}

	_, err := CoordToPoint(10, -60.5)
	assert.ErrorIs(t, err, ErrOffGrid)

	lon, lat := Point{1800, 600}.Centre()
	assert.Equal(t, 0.05, lon)
	assert.Equal(t, 0.05, lat)
}

func TestLookupNeighbours(t *testing.T) {
	g := NewGrid(20, 20)
	p := Point{5, 5}
	assert.True(t, math.IsNaN(g.Lookup(p, true)))

	g.Set(7, 5, 1)
	assert.Equal(t, 1.0, g.Lookup(p, true))
	assert.True(t, math.IsNaN(g.Lookup(p, false)))

	// ring 1 beats ring 2; within a ring the fixed order decides
	g.Set(6, 6, 3)
	g.Set(6, 4, 2)
	assert.Equal(t, 2.0, g.Lookup(p, true))

	g.Set(5, 5, 9)
	assert.Equal(t, 9.0, g.Lookup(p, true))

	far := NewGrid(20, 20)
	far.Set(11, 5, 1)
	assert.True(t, math.IsNaN(far.Lookup(p, true)))
	far.Set(10, 5, 4)
	assert.Equal(t, 4.0, far.Lookup(p, true))
}

func TestLookupWraps(t *testing.T) {
	g := NewGrid(20, 20)
	g.Set(19, 0, 7)
	assert.Equal(t, 7.0, g.Lookup(Point{0, 0}, true))
}

type memSource map[YearMonth]*Grid

func (m memSource) Month(_ context.Context, ym YearMonth) (*Grid, error) {
	g, ok := m[ym]
	if !ok {
		return nil, fmt.Errorf("no grid for %s", ym)
	}
	// callers may mutate the grid
	return g.Clone(), nil
}

func kelvinGrid(values map[Point]float64) *Grid {
	g := NewGrid(4, 4)
	for p, v := range values {
		g.Set(int(p.X), int(p.Y), v)
	}
	return g
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestCollect(t *testing.T) {
	jan, feb := YearMonth{1982, 1}, YearMonth{1982, 2}
	src := memSource{
		jan: kelvinGrid(map[Point]float64{{0, 0}: 283.15, {1, 1}: 300}),
		feb: kelvinGrid(map[Point]float64{{0, 0}: 273.15, {2, 1}: 250}),
	}
	points := []Point{{1, 1}, {0, 0}, {1, 1}}

	s, err := Collect(context.Background(), src, points, []YearMonth{jan, feb}, CollectOptions{Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0}, {1, 1}}, s.Points)
	assert.Equal(t, []float64{10, 0}, s.Of(Point{0, 0}))
	v := s.Of(Point{1, 1})
	assert.Equal(t, 26.85, v[0])
	assert.True(t, math.IsNaN(v[1]))
	assert.Nil(t, s.Of(Point{3, 3}))

	s, err = Collect(context.Background(), src, points, []YearMonth{jan, feb}, CollectOptions{Neighbours: true, Workers: 1, Logger: quietLogger()})
	require.NoError(t, err)
	// the first ring candidate of (1,1) is (0,0)
	assert.Equal(t, []float64{26.85, 0}, s.Of(Point{1, 1}))

	_, err = Collect(context.Background(), src, points, []YearMonth{{1983, 1}}, CollectOptions{Logger: quietLogger()})
	assert.Error(t, err)
}

func TestDoculectTemperaturesRoundTrip(t *testing.T) {
	p, err := CoordToPoint(0, 0)
	require.NoError(t, err)
	q, err := CoordToPoint(10, 10)
	require.NoError(t, err)
	s := &Series{
		Months: []YearMonth{{1982, 1}, {1982, 2}},
		Points: []Point{p, q},
		Values: [][]float64{{20, -1.25}, {math.NaN(), 3}},
	}
	locs := []Located{{"A", 0, 0}, {"B", 10, 10}, {"C", 0.01, 0.01}}

	var buf bytes.Buffer
	require.NoError(t, WriteDoculects(&buf, locs, s))
	assert.Equal(t, "doculect name,1982/1,1982/2\nA,20.0,-1.25\nB,--,3.0\nC,20.0,-1.25\n", buf.String())

	got, err := ReadDoculects(&buf)
	require.NoError(t, err)
	assert.Equal(t, []YearMonth{{1982, 1}, {1982, 2}}, got.Months)
	assert.Equal(t, []string{"A", "C"}, got.Names)
	assert.Equal(t, []float64{20, -1.25}, got.Lookup("C"))
	assert.Nil(t, got.Lookup("B"))
	assert.Equal(t, map[string]bool{"A": true, "C": true}, got.Available())

	err = WriteDoculects(io.Discard, []Located{{"D", 50, 50}}, s)
	assert.ErrorContains(t, err, "not collected")
}

func TestCSVSourceAndGlobalMean(t *testing.T) {
	dir := t.TempDir()
	write := func(ym YearMonth, body string) {
		src := CSVSource{Dir: dir}
		path := src.Path(ym)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write(YearMonth{1982, 1}, "273.15,,283.15\n293.15,300,--\n")
	write(YearMonth{1982, 2}, "275.15,280,285.15\n293.15,300,250\n")

	src := CSVSource{Dir: dir, Rows: 2, Cols: 3}
	assert.Equal(t, filepath.Join(dir, "1982", "198201.csv"), src.Path(YearMonth{1982, 1}))

	g, err := src.Month(context.Background(), YearMonth{1982, 1})
	require.NoError(t, err)
	assert.Equal(t, 283.15, g.At(2, 0))
	assert.True(t, g.Masked(1, 0))
	assert.True(t, g.Masked(2, 1))

	mean, err := GlobalMean(context.Background(), src, Months(1982, 1982)[:2], quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1.0, mean.At(0, 0))
	assert.True(t, mean.Masked(1, 0))
	assert.Equal(t, 20.0, mean.At(0, 1))

	var buf bytes.Buffer
	require.NoError(t, WriteGrid(&buf, mean))
	assert.Equal(t, "1.0,,11.0\n20.0,26.85,\n", buf.String())

	back, err := ReadGrid(strings.NewReader(buf.String()), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 26.85, back.At(1, 1))

	_, err = ReadGrid(strings.NewReader("1,2,3\n"), 2, 3)
	assert.Error(t, err)

	_, err = src.Month(context.Background(), YearMonth{1990, 1})
	assert.Error(t, err)
}

func TestMonths(t *testing.T) {
	ms := Months(1982, 1983)
	require.Len(t, ms, 24)
	assert.Equal(t, YearMonth{1982, 1}, ms[0])
	assert.Equal(t, YearMonth{1983, 12}, ms[23])

	ym, err := ParseYearMonth("2001/10")
	require.NoError(t, err)
	assert.Equal(t, YearMonth{2001, 10}, ym)
	_, err = ParseYearMonth("2001-10")
	assert.Error(t, err)
}
