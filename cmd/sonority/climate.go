package main

import (
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/japaniel/sonority/pkg/climate"
)

func (a *app) gridSource() (climate.CSVSource, []climate.YearMonth) {
	c := a.cfg.Climate
	return climate.CSVSource{Dir: c.GridDir}, climate.Months(c.FirstYear, c.LastYear)
}

func newTemperatureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "temperature",
		Short: "Collect the monthly temperature at every doculect of sonorities.csv",
		Long: `Temperature reads one grid per month and writes the temperature table,
one row per doculect. Masked cells are filled from the nearest ring of
neighbours when enabled; values still missing are written as --.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.readSonorities()
			if err != nil {
				return err
			}
			var locs []climate.Located
			for _, r := range rows {
				if math.IsNaN(r.Lon) || math.IsNaN(r.Lat) {
					continue
				}
				if _, err := climate.CoordToPoint(r.Lon, r.Lat); err != nil {
					a.log.Warn("doculect outside the temperature grid", "name", r.Name, "err", err)
					continue
				}
				locs = append(locs, climate.Located{Name: r.Name, Lon: r.Lon, Lat: r.Lat})
			}
			points, err := climate.Points(locs)
			if err != nil {
				return err
			}

			src, months := a.gridSource()
			series, err := climate.Collect(cmd.Context(), src, points, months, climate.CollectOptions{
				Neighbours: a.cfg.Climate.Neighbours,
				Workers:    a.cfg.Climate.Workers,
				Logger:     a.log,
			})
			if err != nil {
				return err
			}

			path := a.cfg.Climate.Temperatures
			if err := writeFile(path, func(w io.Writer) error { return climate.WriteDoculects(w, locs, series) }); err != nil {
				return err
			}
			a.wrote(cmd, path, len(locs), "doculects")
			return nil
		},
	}
}

func newGlobalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Average every monthly grid into one global temperature grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, months := a.gridSource()
			g, err := climate.GlobalMean(cmd.Context(), src, months, a.log)
			if err != nil {
				return err
			}
			path := a.cfg.Climate.Global
			if err := writeFile(path, func(w io.Writer) error { return climate.WriteGrid(w, g) }); err != nil {
				return err
			}
			a.wrote(cmd, path, len(months), "months")
			return nil
		},
	}
}
