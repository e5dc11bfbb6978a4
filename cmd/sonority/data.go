package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/japaniel/sonority/pkg/climate"
	"github.com/japaniel/sonority/pkg/corpus"
	"github.com/japaniel/sonority/pkg/db"
	"github.com/japaniel/sonority/pkg/report"
)

// Output file names under the output directory.
const (
	sonoritiesFile     = "sonorities.csv"
	phonesFile         = "phones.csv"
	structuresFile     = "word_structures.csv"
	lengthsFile        = "word_lengths.csv"
	vowelSolutionsFile = "vowel_solutions.csv"
)

func (a *app) corpusPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Corpus.Path
}

// loadCorpus parses the corpus file, through the disk cache unless it is
// disabled. A missing file is downloaded when a corpus url is configured.
func (a *app) loadCorpus(ctx context.Context, path string) ([]*corpus.Doculect, error) {
	if url := a.cfg.Corpus.URL; url != "" {
		downloaded, err := corpus.Ensure(ctx, path, url)
		if err != nil {
			return nil, err
		}
		if downloaded {
			a.log.Info("corpus downloaded", "url", url, "path", path)
		}
	}
	if a.cfg.Corpus.NoCache {
		return corpus.Load(path)
	}
	cache, err := corpus.OpenCache(a.cfg.Corpus.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open corpus cache: %w", err)
	}
	ds, hit, err := cache.Load(path)
	if err != nil {
		if ds == nil {
			return nil, err
		}
		a.log.Warn("corpus cache not updated", "err", err)
	}
	a.log.Debug("corpus read", "path", path, "cached", hit, "doculects", len(ds))
	return ds, nil
}

// storedCorpus loads the doculects of the most recently imported corpus.
func (a *app) storedCorpus() ([]*corpus.Doculect, int64, error) {
	conn, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, 0, err
	}
	defer conn.Close()

	c, err := db.LatestCorpus(conn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("no corpus in %s, run sonority import first", a.cfg.Database.Path)
	}
	if err != nil {
		return nil, 0, err
	}
	ds, err := db.LoadDoculects(conn, db.DoculectQuery{CorpusID: c.ID})
	if err != nil {
		return nil, 0, fmt.Errorf("load corpus %d: %w", c.ID, err)
	}
	a.log.Debug("corpus read", "db", a.cfg.Database.Path, "corpus", c.ID, "doculects", len(ds))
	return ds, c.ID, nil
}

// rawDoculects returns every doculect of the selected corpus. The corpus id
// is 0 unless the doculects come from the database.
func (a *app) rawDoculects(ctx context.Context, args []string) ([]*corpus.Doculect, int64, error) {
	if a.fromDB {
		return a.storedCorpus()
	}
	ds, err := a.loadCorpus(ctx, a.corpusPath(args))
	return ds, 0, err
}

// doculects returns the doculects kept for scoring. With withClimate set
// and a temperature table present, doculects without climate data are
// dropped too.
func (a *app) doculects(ctx context.Context, args []string, withClimate bool) ([]*corpus.Doculect, int64, error) {
	ds, corpusID, err := a.rawDoculects(ctx, args)
	if err != nil {
		return nil, 0, err
	}
	rules := corpus.DefaultRules()
	if len(a.cfg.Corpus.Meanings) > 0 {
		rules.Meanings = slices.Clone(a.cfg.Corpus.Meanings)
	}
	rules.MinSynsets = a.cfg.Corpus.MinSynsets
	if withClimate {
		temps, err := a.readTemperatures()
		switch {
		case errors.Is(err, fs.ErrNotExist):
			a.log.Info("no temperature table, keeping doculects without climate data", "path", a.cfg.Climate.Temperatures)
		case err != nil:
			return nil, 0, err
		default:
			rules.Available = temps.Available()
		}
	}
	return corpus.Filter(a.log, ds, rules), corpusID, nil
}

func (a *app) readTemperatures() (*climate.Temperatures, error) {
	f, err := os.Open(a.cfg.Climate.Temperatures)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := climate.ReadDoculects(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.Climate.Temperatures, err)
	}
	return t, nil
}

func (a *app) readSonorities() ([]report.SonorityRow, error) {
	path := a.output(sonoritiesFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w (run sonority index first)", err)
	}
	defer f.Close()
	rows, err := report.ReadSonorities(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func (a *app) readGlobal() (*climate.Grid, error) {
	f, err := os.Open(a.cfg.Climate.Global)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := climate.ReadGrid(bufio.NewReader(f), climate.Height, climate.Width)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.Climate.Global, err)
	}
	return g, nil
}

func (a *app) output(name string) string {
	return filepath.Join(a.cfg.Output.Dir, name)
}

// writeFile creates path, and its directory, and fills it with write.
func writeFile(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// wrote reports a written file on the command output.
func (a *app) wrote(cmd *cobra.Command, path string, n int, what string) {
	out := cmd.OutOrStdout()
	a.good.Fprint(out, "wrote ")
	fmt.Fprintf(out, "%s (%d %s)\n", path, n, what)
}
