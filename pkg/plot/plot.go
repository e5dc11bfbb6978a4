// Package plot renders sonority and climate charts as standalone HTML
// pages.
package plot

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/japaniel/sonority/pkg/analysis"
	"github.com/japaniel/sonority/pkg/climate"
	"github.com/japaniel/sonority/pkg/report"
)

const (
	CHRTWIDTH  = "1200px"
	CHRTHEIGHT = "700px"
	HISTBINS   = 20
	// HEATSTEP is the number of grid cells per heatmap cell on each axis.
	HEATSTEP = 30
)

// coldhot runs from cold blue to hot red.
var coldhot = []string{"#313695", "#4575b4", "#abd9e9", "#ffffbf", "#fdae61", "#d73027", "#a50026"}

func initopts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: CHRTWIDTH, Height: CHRTHEIGHT}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	}
}

func geoaxes() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{Name: "longitude", Min: -180, Max: 180}),
		charts.WithYAxisOpts(opts.YAxis{Name: "latitude", Min: -90, Max: 90}),
	}
}

func round(x float64) float64 { return math.Round(x*1000) / 1000 }

// IndexMap places each doculect at its coordinate, coloured by its index on
// the given scale. Doculects without a coordinate or index are left out.
func IndexMap(rows []report.SonorityRow, scale int) (*charts.Scatter, error) {
	var (
		data   []opts.ScatterData
		lo, hi = math.Inf(1), math.Inf(-1)
	)
	for _, r := range rows {
		if scale >= len(r.Indices) {
			return nil, fmt.Errorf("plot: %s has no index%d", r.Name, scale)
		}
		v := r.Indices[scale]
		if math.IsNaN(v) || math.IsNaN(r.Lon) || math.IsNaN(r.Lat) {
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
		data = append(data, opts.ScatterData{Name: r.Name, Value: []interface{}{r.Lon, r.Lat, round(v)}, SymbolSize: 6})
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("plot: no doculect has index%d", scale)
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(initopts(fmt.Sprintf("Sonority index%d", scale), fmt.Sprintf("%d doculects", len(data)))...)
	sc.SetGlobalOptions(geoaxes()...)
	sc.SetGlobalOptions(charts.WithVisualMapOpts(opts.VisualMap{
		Calculable: true,
		Min:        float32(lo),
		Max:        float32(hi),
		InRange:    &opts.VisualMapInRange{Color: coldhot},
	}))
	sc.AddSeries(fmt.Sprintf("index%d", scale), data)
	return sc, nil
}

// MacroareaMap plots the joined doculects with one series per macroarea.
func MacroareaMap(t *analysis.Table) (*charts.Scatter, error) {
	k := t.TextIndex(analysis.ColMacroarea)
	if k < 0 {
		return nil, fmt.Errorf("plot: table has no %s column", analysis.ColMacroarea)
	}
	series := map[string][]opts.ScatterData{}
	for _, r := range t.Rows {
		area := r.Text[k]
		series[area] = append(series[area], opts.ScatterData{
			Name:       r.Text[0],
			Value:      []interface{}{r.Lon, r.Lat},
			SymbolSize: 5,
		})
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(initopts("Macroareas", fmt.Sprintf("%d doculects", len(t.Rows)))...)
	sc.SetGlobalOptions(geoaxes()...)
	sc.SetGlobalOptions(charts.WithLegendOpts(opts.Legend{Show: true, Right: "10%"}))
	for _, area := range analysis.MacroareaOrder {
		if data, ok := series[area]; ok {
			sc.AddSeries(area, data)
		}
	}
	return sc, nil
}

// Histogram counts xs into equal-width bins and returns the bin centres
// with their counts.
func Histogram(xs []float64, bins int) (centres []float64, counts []float64) {
	if len(xs) == 0 || bins < 1 {
		return nil, nil
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []float64{lo}, []float64{float64(len(xs))}
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// the last divider is exclusive
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts = stat.Histogram(nil, dividers, sorted, nil)
	centres = make([]float64, bins)
	for i := range centres {
		centres[i] = (dividers[i] + dividers[i+1]) / 2
	}
	return centres, counts
}

func histogram(title string, xs []float64) *charts.Bar {
	centres, counts := Histogram(xs, HISTBINS)
	labels := make([]string, len(centres))
	data := make([]opts.BarData, len(counts))
	for i := range centres {
		labels[i] = fmt.Sprintf("%.2f", centres[i])
		data[i] = opts.BarData{Value: counts[i]}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(initopts(title, fmt.Sprintf("n = %d", len(xs)))...)
	bar.SetXAxis(labels).AddSeries(title, data)
	return bar
}

// TransformHistograms draws one histogram for the original values and one
// per transform, for every fitted column.
func TransformHistograms(fits []*analysis.Transformed) []components.Charter {
	var out []components.Charter
	for _, f := range fits {
		out = append(out,
			histogram(f.Column, f.Original),
			histogram(fmt.Sprintf("%s Box-Cox (λ = %.2f)", f.Column, f.LambdaBoxCox), f.BoxCox),
			histogram(fmt.Sprintf("%s Yeo-Johnson (λ = %.2f)", f.Column, f.LambdaYeoJohnson), f.YeoJohnson),
		)
	}
	return out
}

// Downsample averages step×step blocks of g, ignoring masked cells. A
// block with no data stays masked.
func Downsample(g *climate.Grid, step int) *climate.Grid {
	rows, cols := g.Dims()
	out := climate.NewGrid((rows+step-1)/step, (cols+step-1)/step)
	for by := 0; by*step < rows; by++ {
		for bx := 0; bx*step < cols; bx++ {
			var sum, n float64
			for y := by * step; y < min((by+1)*step, rows); y++ {
				for x := bx * step; x < min((bx+1)*step, cols); x++ {
					if g.Masked(x, y) {
						continue
					}
					sum += g.At(x, y)
					n++
				}
			}
			if n > 0 {
				out.Set(bx, by, sum/n)
			}
		}
	}
	return out
}

// GlobalHeatmap renders a downsampled temperature grid. Row 0 is the
// southernmost latitude.
func GlobalHeatmap(g *climate.Grid, step int) *charts.HeatMap {
	small := Downsample(g, step)
	rows, cols := small.Dims()

	xs := make([]string, cols)
	for x := range xs {
		xs[x] = fmt.Sprintf("%.1f", climate.LonOrigin+float64(x*step)*climate.Step)
	}
	ys := make([]string, rows)
	for y := range ys {
		ys[y] = fmt.Sprintf("%.1f", climate.LatOrigin+float64(y*step)*climate.Step)
	}

	var (
		data   []opts.HeatMapData
		lo, hi = math.Inf(1), math.Inf(-1)
	)
	for y := range rows {
		for x := range cols {
			if small.Masked(x, y) {
				continue
			}
			v := small.At(x, y)
			lo, hi = min(lo, v), max(hi, v)
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, round(v)}})
		}
	}
	if len(data) == 0 {
		lo, hi = 0, 0
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(initopts("Mean temperature", fmt.Sprintf("°C, %d×%d cells", step, step))...)
	hm.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: coldhot},
		}),
	)
	hm.AddSeries("T", data)
	return hm
}

// RenderPage writes the charts as one HTML page.
func RenderPage(w io.Writer, title string, cc ...components.Charter) error {
	if len(cc) == 0 {
		return fmt.Errorf("plot: nothing to render")
	}
	p := components.NewPage()
	p.PageTitle = title
	p.AddCharts(cc...)
	return p.Render(w)
}
