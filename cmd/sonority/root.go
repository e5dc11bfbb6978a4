package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/japaniel/sonority/pkg/config"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0-dev"

// app carries what every subcommand needs once the root has parsed its
// persistent flags.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	fromDB bool

	warn *color.Color
	good *color.Color
}

func newRootCmd() *cobra.Command {
	a := &app{
		warn: color.New(color.FgYellow),
		good: color.New(color.FgGreen, color.Bold),
	}
	root := &cobra.Command{
		Use:   "sonority",
		Short: "Sonority indices of ASJP wordlists and their climate correlates",
		Long: `sonority segments ASJP wordlists into phones, scores them on five
sonority scales, collects monthly temperatures at each doculect and
relates the two.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (YAML or TOML), else $"+config.EnvPath+" or "+config.DefaultPath)
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.BoolVar(&a.fromDB, "from-db", false, "read doculects from the last imported corpus instead of the corpus file")

	root.AddCommand(
		newImportCmd(a),
		newValidateCmd(a),
		newPhonesCmd(a),
		newIndexCmd(a),
		newStructuresCmd(a),
		newVowelsCmd(a),
		newTemperatureCmd(a),
		newGlobalCmd(a),
		newProcessCmd(a),
		newPlotCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := setColor(mode); err != nil {
		return err
	}

	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	return nil
}

func setColor(mode string) error {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unknown color mode %q (auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
