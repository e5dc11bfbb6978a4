package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/japaniel/sonority/pkg/corpus"
	"github.com/japaniel/sonority/pkg/db"
	"github.com/japaniel/sonority/pkg/report"
	"github.com/japaniel/sonority/pkg/sonority"
)

func newIndexCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "index [corpus]",
		Short: "Compute the sonority index of every doculect on every scale",
		Long: `Index filters the corpus, scores every doculect on all sonority scales and
writes sonorities.csv with coordinates, classification, counts, mean word
length and one column per scale.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, corpusID, err := a.doculects(cmd.Context(), args, true)
			if err != nil {
				return err
			}
			t := sonority.DefaultTable()
			if diags := sonority.Validate(t, ds); len(diags) > 0 {
				a.log.Warn("corpus has findings, see sonority validate", "count", len(diags))
			}

			opts := a.cfg.ScoringOptions()
			var clicks []float64
			if len(a.cfg.Scoring.Clicks) > 0 {
				clicks = a.cfg.Scoring.Clicks
			}
			indices, err := sonority.AllIndices(cmd.Context(), t, ds, opts, clicks)
			if err != nil {
				return err
			}
			rows, err := report.SonorityRows(ds, indices, sonority.WordLengths(ds, opts))
			if err != nil {
				return err
			}

			path := a.output(sonoritiesFile)
			if err := writeFile(path, func(w io.Writer) error { return report.WriteSonorities(w, rows) }); err != nil {
				return err
			}
			a.wrote(cmd, path, len(rows), "doculects")

			if !save {
				return nil
			}
			runID, err := a.saveRun(cmd.Context(), corpusID, rows, opts, clicks)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s saved to %s\n", runID, a.cfg.Database.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also store the indices as a run in the database")
	return cmd
}

// saveRun stores rows as one run in a single transaction.
func (a *app) saveRun(ctx context.Context, corpusID int64, rows []report.SonorityRow, opts sonority.Options, clicks []float64) (string, error) {
	conn, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	scales := sonority.DefaultTable().Scales()
	options := fmt.Sprintf("by_meaning=%t with_loans=%t merge_vowels=%t clicks=%v", opts.ByMeaning, opts.WithLoans, opts.MergeVowels, clicks)
	runID, err := db.CreateRun(tx, corpusID, scales, options)
	if err != nil {
		return "", err
	}
	for _, r := range rows {
		for scale, v := range r.Indices {
			if err := db.SaveIndex(tx, runID, r.Name, scale, v); err != nil {
				return "", fmt.Errorf("save %s index%d: %w", r.Name, scale, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	a.log.Info("run saved", "run", runID, "doculects", len(rows), "scales", scales)
	return runID, nil
}

func newPhonesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "phones [corpus]",
		Short: "Count and classify every phone of the filtered corpus",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := a.doculects(cmd.Context(), args, true)
			if err != nil {
				return err
			}
			records, err := sonority.ClassifyPhones(sonority.DefaultTable(), sonority.PhoneCounts(ds))
			if err != nil {
				return err
			}
			path := a.output(phonesFile)
			if err := writeFile(path, func(w io.Writer) error { return report.WritePhones(w, records) }); err != nil {
				return err
			}
			a.wrote(cmd, path, len(records), "phones")
			return nil
		},
	}
}

func newStructuresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "structures [corpus]",
		Short: "Tabulate the consonant-vowel skeletons of all words",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := a.doculects(cmd.Context(), args, true)
			if err != nil {
				return err
			}
			structures, err := sonority.WordStructures(sonority.DefaultTable(), ds)
			if err != nil {
				return err
			}

			path := a.output(structuresFile)
			if err := writeFile(path, func(w io.Writer) error { return report.WriteWordStructures(w, structures) }); err != nil {
				return err
			}
			a.wrote(cmd, path, len(structures), "structures")

			path = a.output(lengthsFile)
			if err := writeFile(path, func(w io.Writer) error { return report.WriteWordLengths(w, structures) }); err != nil {
				return err
			}
			a.wrote(cmd, path, len(report.GroupByLength(structures)), "lengths")
			return nil
		},
	}
}

func newVowelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vowels [corpus]",
		Short: "Compare vowel length treatments on the first scale",
		Long: `Vowels scores every doculect on scale 0 three ways: as is, with adjacent
vowels merged into one nucleus, and with every single vowel doubled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := a.doculects(cmd.Context(), args, true)
			if err != nil {
				return err
			}
			sol, err := vowelSolutions(sonority.DefaultTable(), ds, a.cfg.ScoringOptions())
			if err != nil {
				return err
			}
			path := a.output(vowelSolutionsFile)
			if err := writeFile(path, func(w io.Writer) error { return report.WriteVowelSolutions(w, sol) }); err != nil {
				return err
			}
			a.wrote(cmd, path, len(sol.Names), "doculects")
			return nil
		},
	}
}

func vowelSolutions(t *sonority.Table, ds []*corpus.Doculect, opts sonority.Options) (report.VowelSolutions, error) {
	var sol report.VowelSolutions
	c, err := sonority.NewContext(t, 0, 0)
	if err != nil {
		return sol, err
	}
	opts.MergeVowels = false
	current, err := sonority.Indices(c, ds, opts)
	if err != nil {
		return sol, err
	}
	merged := opts
	merged.MergeVowels = true
	mergedIdx, err := sonority.Indices(c, ds, merged)
	if err != nil {
		return sol, err
	}
	doubledIdx, err := sonority.Indices(c, doubled(ds), opts)
	if err != nil {
		return sol, err
	}

	sol.Names = make([]string, len(ds))
	for i, d := range ds {
		sol.Names[i] = d.Name
	}
	sol.Current, sol.MergeVowels, sol.DoubleMonophthongs = current, mergedIdx, doubledIdx
	return sol, nil
}

// doubled returns copies of ds with every single vowel written twice.
func doubled(ds []*corpus.Doculect) []*corpus.Doculect {
	out := make([]*corpus.Doculect, len(ds))
	for i, d := range ds {
		cp := *d
		cp.Synsets = make([]corpus.Synset, len(d.Synsets))
		for j, s := range d.Synsets {
			words := make([]corpus.Word, len(s.Words))
			for k, w := range s.Words {
				words[k] = corpus.Word{Form: sonority.DoubleMonophthongs(w.Form), Loan: w.Loan}
			}
			cp.Synsets[j] = corpus.Synset{Meaning: s.Meaning, Words: words}
		}
		out[i] = &cp
	}
	return out
}
