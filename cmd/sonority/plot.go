package main

import (
	"errors"
	"io"
	"io/fs"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/spf13/cobra"

	"github.com/japaniel/sonority/pkg/plot"
	"github.com/japaniel/sonority/pkg/report"
)

func newPlotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plot",
		Short: "Render index maps, macroareas, transforms and the global temperature as HTML",
		Long: `Plot writes sonority_map.html from sonorities.csv. With a temperature
table it also writes macroareas.html and transforms.html, and with the
global grid global.html. Only doculects with climate data are drawn once
the temperature table exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.readSonorities()
			if err != nil {
				return err
			}
			temps, err := a.readTemperatures()
			haveTemps := err == nil
			switch {
			case haveTemps:
				avail := temps.Available()
				kept := rows[:0:0]
				for _, r := range rows {
					if avail[r.Name] {
						kept = append(kept, r)
					}
				}
				rows = kept
			case !errors.Is(err, fs.ErrNotExist):
				return err
			}

			maps := a.indexMaps(rows)
			if err := a.render(cmd, "sonority_map.html", "Sonority indices", maps...); err != nil {
				return err
			}

			if haveTemps {
				data, err := a.joined()
				if err != nil {
					return err
				}
				areas, err := plot.MacroareaMap(data)
				if err != nil {
					return err
				}
				if err := a.render(cmd, "macroareas.html", "Macroareas", areas); err != nil {
					return err
				}
				if fits := a.transform("doculects", data); fits != nil {
					if err := a.render(cmd, "transforms.html", "Power transforms", plot.TransformHistograms(fits)...); err != nil {
						return err
					}
				}
			}

			g, err := a.readGlobal()
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			cc := []components.Charter{plot.GlobalHeatmap(g, plot.HEATSTEP)}
			if len(maps) > 0 {
				cc = append(cc, maps[0])
			}
			return a.render(cmd, "global.html", "Global temperature", cc...)
		},
	}
}

// indexMaps draws one map per scale, skipping scales no doculect has.
func (a *app) indexMaps(rows []report.SonorityRow) []components.Charter {
	if len(rows) == 0 {
		return nil
	}
	var out []components.Charter
	for scale := range rows[0].Indices {
		sc, err := plot.IndexMap(rows, scale)
		if err != nil {
			a.log.Warn("index map skipped", "scale", scale, "err", err)
			continue
		}
		out = append(out, sc)
	}
	return out
}

func (a *app) render(cmd *cobra.Command, name, title string, cc ...components.Charter) error {
	if len(cc) == 0 {
		a.log.Warn("nothing to plot", "page", name)
		return nil
	}
	path := a.output(name)
	if err := writeFile(path, func(w io.Writer) error { return plot.RenderPage(w, title, cc...) }); err != nil {
		return err
	}
	a.wrote(cmd, path, len(cc), "charts")
	return nil
}
