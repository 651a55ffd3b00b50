package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/matchpulse/winprob/internal/history"
	"github.com/matchpulse/winprob/pkg/artifacts"
	"github.com/matchpulse/winprob/pkg/engine"
)

var (
	flagConfig    string
	flagLeagues   string
	flagRegistry  string
	flagHistoryDB string
	flagVerbose   bool
	flagPretty    bool
)

func main() {
	root := &cobra.Command{
		Use:   "winprob",
		Short: "Football win-probability engine",
		Long: `winprob computes three-way win probabilities for a football match
from a snapshot of lineups, player profiles, live statistics and
optional market odds.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config overriding the model defaults")
	root.PersistentFlags().StringVar(&flagLeagues, "leagues", "", "fitted league parameters JSON")
	root.PersistentFlags().StringVar(&flagRegistry, "registry", "", "player impact registry JSON")
	root.PersistentFlags().StringVar(&flagHistoryDB, "history-db", "", "SQLite file for prediction history")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "indent JSON output")

	root.AddCommand(predictCmd(), historyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if flagVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <snapshot.json>",
		Short: "Compute win probabilities for one snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig()
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			if err := attachArtifacts(snap); err != nil {
				return err
			}

			var store *history.Store
			if flagHistoryDB != "" {
				store, err = history.Open(flagHistoryDB)
				if err != nil {
					return err
				}
				defer store.Close()

				previous, err := store.Latest(snap.Match.MatchID)
				if err != nil {
					return err
				}
				snap.Previous = previous
			}

			pred := engine.New(cfg).Predict(snap)

			if store != nil {
				asOf := snap.AsOf
				if asOf.IsZero() {
					asOf = time.Now()
				}
				if err := store.Append(snap.Match.MatchID, asOf, snap.Match.Minute, pred.Row); err != nil {
					return err
				}
			}

			return writeJSON(cmd, pred)
		},
	}
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <match-id>",
		Short: "List stored predictions for a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagHistoryDB == "" {
				return fmt.Errorf("--history-db is required for the history command")
			}
			store, err := history.Open(flagHistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(args[0], limit)
			if err != nil {
				return err
			}
			return writeJSON(cmd, entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to return (0 = all)")
	return cmd
}

func loadEngineConfig() (*engine.Config, error) {
	if flagConfig == "" {
		return engine.DefaultConfig(), nil
	}
	return engine.LoadConfig(flagConfig)
}

func loadSnapshot(path string) (*engine.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snap engine.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// attachArtifacts loads the optional offline-fitted artifacts named on the
// command line and attaches whatever applies to the snapshot's league.
func attachArtifacts(snap *engine.Snapshot) error {
	if flagLeagues != "" {
		params, err := artifacts.LoadLeagueParams(flagLeagues)
		if err != nil {
			return err
		}
		if lp, ok := params[snap.Match.LeagueID]; ok {
			snap.League = &lp
		} else {
			log.Warn().Int("leagueId", snap.Match.LeagueID).Msg("no fitted params for league, using defaults")
		}
	}
	if flagRegistry != "" {
		registry, err := artifacts.LoadRegistry(flagRegistry, true)
		if err != nil {
			return err
		}
		snap.Impact = registry
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if flagPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
