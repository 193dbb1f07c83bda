package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ev-dashboard/internal/config"
	"ev-dashboard/internal/ledger"
	"ev-dashboard/internal/settings"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	dbPath       string
	settingsPath string
	jsonOut      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "evctl",
		Short: "Find value bets, size stakes and track a bet ledger",
		Long: `evctl evaluates betting value and keeps a personal bet ledger.

It provides tools for:
  - Expected value of a probability against offered odds
  - Stake sizing with fixed, percentage or fractional Kelly policies
  - Removing bookmaker margin from market odds
  - Recording, settling and summarizing bets`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.dbPath, "db", "d", envOr("DB_PATH", config.DefaultDBPath), "path to SQLite ledger DB")
	root.PersistentFlags().StringVar(&opts.settingsPath, "settings", envOr("SETTINGS_PATH", config.DefaultSettingsPath), "path to settings file (.yaml or .json)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newEdgeCmd(opts),
		newStakeCmd(opts),
		newFairCmd(opts),
		newEstimateCmd(opts),
		newBetCmd(opts),
		newSummaryCmd(opts),
		newSettingsCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (o *options) openLedger() (*ledger.Service, func(), error) {
	if err := os.MkdirAll(filepath.Dir(o.dbPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create db dir: %w", err)
	}
	store, err := ledger.OpenSQLite(o.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	return ledger.NewService(store, nil), func() { store.Close() }, nil
}

func (o *options) openSettings() (*settings.FileStore, error) {
	fs, err := settings.Open(o.settingsPath)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	return fs, nil
}

// print writes v as indented JSON when --json is set, otherwise calls text.
func (o *options) print(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
