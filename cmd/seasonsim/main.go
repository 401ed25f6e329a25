// Command seasonsim drives a synthetic season through the fantasy
// pipeline and verifies the folded result, or scores a single
// scorecard line from flags.
//
// Usage:
//
//	seasonsim run --players 24 --rounds 12
//	seasonsim run --players 40 --rounds 20 --rate 500 --verbose
//	seasonsim score --runs 50 --balls 33 --fours 6 --dismissed
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seambreak/gully/internal/domain/model"
	"github.com/seambreak/gully/internal/domain/rules"
	"github.com/seambreak/gully/internal/domain/scoring"
	"github.com/seambreak/gully/internal/seasonsim"
)

// Default simulation constants.
const (
	defaultPlayers       = 24
	defaultRounds        = 12
	defaultTopN          = 10
	defaultVariantRate   = 0.15
	defaultDuplicateRate = 0.05
	defaultHandicapEvery = 4
	defaultRunTimeout    = 10 * time.Minute
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "seasonsim",
		Short:         "Synthetic season driver for the gully pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd())
	root.AddCommand(scoreCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runCmd simulates a full season and verifies the folded state.
func runCmd() *cobra.Command {
	config := &seasonsim.Config{}
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a season, fold it through the pipeline and verify it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return seasonsim.Run(ctx, config)
		},
	}

	cmd.Flags().IntVar(&config.Players, "players", defaultPlayers, "Roster size")
	cmd.Flags().IntVar(&config.Matches, "rounds", defaultRounds, "Rounds to simulate")
	cmd.Flags().IntVar(&config.Workers, "workers", 0, "Folding workers (0 = process config)")
	cmd.Flags().IntVar(&config.QueueSize, "queue", 0, "Record queue capacity (0 = process config)")
	cmd.Flags().Float64Var(&config.Rate, "rate", 0, "Submission pace in records per second (0 = unpaced)")
	cmd.Flags().Float64Var(&config.VariantRate, "variants", defaultVariantRate, "Fraction of records respelled without their id")
	cmd.Flags().Float64Var(&config.DuplicateRate, "duplicates", defaultDuplicateRate, "Fraction of records re-sent verbatim")
	cmd.Flags().IntVar(&config.HandicapEvery, "handicap-every", defaultHandicapEvery, "Global handicap pass every N rounds (0 = end of season only)")
	cmd.Flags().IntVar(&config.TopN, "top", defaultTopN, "Standings rows to display")
	cmd.Flags().StringVar(&config.OutputFile, "output", "", "Standings output file (default: season_standings_TIMESTAMP.json)")
	cmd.Flags().StringVar(&config.LogFile, "log", "", "Log file (default: season_sim_TIMESTAMP.log)")
	cmd.Flags().BoolVar(&config.Verbose, "verbose", false, "Enable verbose logging")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultRunTimeout, "Overall run timeout")

	return cmd
}

// scoreCmd scores one scorecard line under the configured rule set and
// prints the breakdown.
func scoreCmd() *cobra.Command {
	var (
		rec       model.PerformanceRecord
		rulesFile string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a single scorecard line and print the breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var (
				rs  *rules.RuleSet
				err error
			)
			if rulesFile != "" {
				rs, err = rules.LoadFile(ctx, rulesFile)
			} else {
				rs, err = rules.Load(ctx)
			}
			if err != nil {
				return err
			}

			b := scoring.NewRuleEngine(scoring.WithRules(rs)).Score(ctx, rec)

			fmt.Printf("Batting:  %8.2f\n", b.Batting)
			fmt.Printf("Bowling:  %8.2f\n", b.Bowling)
			fmt.Printf("Fielding: %8.2f\n", b.Fielding)
			fmt.Printf("Bonus:    %8.2f\n", b.Bonus)
			fmt.Printf("Total:    %8.2f\n", b.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&rec.Batting.Runs, "runs", 0, "Runs scored")
	cmd.Flags().IntVar(&rec.Batting.Balls, "balls", 0, "Balls faced")
	cmd.Flags().IntVar(&rec.Batting.Fours, "fours", 0, "Fours hit")
	cmd.Flags().IntVar(&rec.Batting.Sixes, "sixes", 0, "Sixes hit")
	cmd.Flags().BoolVar(&rec.Batting.Dismissed, "dismissed", false, "Batter was dismissed")
	cmd.Flags().IntVar(&rec.Bowling.Wickets, "wickets", 0, "Wickets taken")
	cmd.Flags().Float64Var(&rec.Bowling.Overs, "overs", 0, "Overs bowled")
	cmd.Flags().IntVar(&rec.Bowling.Maidens, "maidens", 0, "Maiden overs bowled")
	cmd.Flags().IntVar(&rec.Bowling.Conceded, "conceded", 0, "Runs conceded")
	cmd.Flags().IntVar(&rec.Fielding.Catches, "catches", 0, "Catches taken")
	cmd.Flags().IntVar(&rec.Fielding.Stumpings, "stumpings", 0, "Stumpings made")
	cmd.Flags().IntVar(&rec.Fielding.RunOuts, "runouts", 0, "Run outs effected")
	cmd.Flags().StringVar(&rec.Tier, "tier", "", "Competition grade for tier scaling")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "Rule set YAML file (default: GULLY_RULES layering)")

	return cmd
}
