package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/sonority/pkg/analysis"
)

func newProcessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Join indices with temperatures, group them and fit power transforms",
		Long: `Process joins sonorities.csv with the temperature table and writes
data.csv plus mean and median tables grouped by macroarea, family and
genus. Every numeric column except the macroarea groups gains a Box-Cox
transformed copy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.joined()
			if err != nil {
				return err
			}

			tables := []struct {
				file      string
				key       string
				transform bool
			}{
				{"data_macroarea.csv", analysis.ColMacroarea, false},
				{"data_family.csv", analysis.ColFamily, true},
				{"data_genus.csv", analysis.ColGenus, true},
			}
			grouped := make([]*analysis.Table, len(tables))
			for i, tb := range tables {
				if grouped[i], err = analysis.GroupBy(data, tb.key); err != nil {
					return err
				}
			}
			a.transform("doculects", data)
			for i, tb := range tables {
				if tb.transform {
					a.transform(strings.ToLower(tb.key), grouped[i])
				}
			}

			if err := a.writeTable(cmd, "data.csv", data); err != nil {
				return err
			}
			for i, tb := range tables {
				if err := a.writeTable(cmd, tb.file, grouped[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// joined reads sonorities.csv and the temperature table and joins them.
func (a *app) joined() (*analysis.Table, error) {
	rows, err := a.readSonorities()
	if err != nil {
		return nil, err
	}
	temps, err := a.readTemperatures()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w (run sonority temperature first)", err)
	}
	if err != nil {
		return nil, err
	}
	data, err := analysis.Join(a.log, rows, temps)
	if err != nil {
		return nil, err
	}
	if len(data.Rows) == 0 {
		return nil, fmt.Errorf("no doculect of %s has climate data", a.output(sonoritiesFile))
	}
	return data, nil
}

// transform adds the Box-Cox columns to t. A failed fit leaves t as it was.
func (a *app) transform(name string, t *analysis.Table) []*analysis.Transformed {
	fits, err := analysis.TransformTable(t)
	if err != nil {
		a.log.Warn("power transform skipped", "table", name, "err", err)
		return nil
	}
	for _, f := range fits {
		a.log.Info("power transform", "table", name, "column", f.Column,
			"boxcox_lambda", f.LambdaBoxCox, "yeojohnson_lambda", f.LambdaYeoJohnson)
	}
	return fits
}

func (a *app) writeTable(cmd *cobra.Command, name string, t *analysis.Table) error {
	path := a.output(name)
	if err := writeFile(path, func(w io.Writer) error { return analysis.WriteCSV(w, t) }); err != nil {
		return err
	}
	a.wrote(cmd, path, len(t.Rows), "rows")
	return nil
}
