package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/sonority/pkg/db"
	"github.com/japaniel/sonority/pkg/ingest"
	"github.com/japaniel/sonority/pkg/sonority"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [corpus]",
		Short: "Store a wordlist corpus with its segmented phones in the database",
		Long: `Import parses the corpus and writes every doculect, meaning and word to
the sqlite database. An interrupted import resumes at the next doculect.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.corpusPath(args)
			ds, err := a.loadCorpus(cmd.Context(), path)
			if err != nil {
				return err
			}

			conn, err := db.Open(a.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer conn.Close()

			out := cmd.OutOrStdout()
			im := ingest.NewImporter(conn)
			im.BatchSize = a.cfg.Database.BatchSize
			im.Workers = a.cfg.Database.Workers
			im.Logger = a.log
			im.OnProgress = func(current, total int) {
				fmt.Fprintf(out, "imported %d/%d doculects\n", current, total)
			}

			id, words, err := im.ImportFile(cmd.Context(), path, ds)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			a.good.Fprint(out, "corpus ")
			fmt.Fprintf(out, "%d: %d words imported into %s\n", id, words, a.cfg.Database.Path)
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [corpus]",
		Short: "Report words and doculects the sonority scales cannot score",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := a.rawDoculects(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			diags := sonority.Validate(sonority.DefaultTable(), ds)
			for _, d := range diags {
				a.warn.Fprintln(out, d.String())
			}
			fmt.Fprintf(out, "%d doculects checked, %d findings\n", len(ds), len(diags))
			return nil
		},
	}
}
