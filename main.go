package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
	"github.com/samuelfneumann/pyramid/environment/box2d/world"
	"github.com/samuelfneumann/pyramid/experiment"
	"github.com/samuelfneumann/pyramid/experiment/trackers"
	"github.com/samuelfneumann/pyramid/utils/progressbar"
)

var (
	configPath = flag.String("config", "", "JSON or YAML experiment config")
	episodes   = flag.Int("episodes", 0, "number of episodes, 0 runs until interrupted")
	seed       = flag.Uint64("seed", 0, "seed for the exploration policy")
	tablePath  = flag.String("table", "", "file the action values are loaded from and saved to")
	dbPath     = flag.String("db", "", "SQLite database to log episodes to")
	eval       = flag.Bool("eval", false, "act greedily and do not learn")
	debug      = flag.Bool("debug", false, "log every episode")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
}

// loadConfig reads the experiment config and applies the flags which
// were set on the command line
func loadConfig() (experiment.Config, error) {
	c := experiment.DefaultConfig()
	if *configPath != "" {
		var err error
		if c, err = experiment.LoadConfig(*configPath); err != nil {
			return c, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "episodes":
			c.Episodes = *episodes
		case "seed":
			c.Seed = *seed
		case "table":
			c.TablePath = *tablePath
		case "db":
			c.DBPath = *dbPath
		case "eval":
			c.Eval = *eval
		}
	})

	return c, c.Validate()
}

func run() error {
	c, err := loadConfig()
	if err != nil {
		return err
	}

	physics, err := world.New(c.Tower)
	if err != nil {
		return err
	}

	table, err := qtable.Load(c.TablePath, len(c.Tower.Actions()))
	if err != nil {
		return err
	}
	log.Info().Msgf("loaded %v states from %v", table.Len(), c.TablePath)

	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return err
	}

	returns := trackers.NewReturn(filepath.Join(c.OutputDir, "return.bin"))
	finalRewards := trackers.NewFinalReward(
		filepath.Join(c.OutputDir, "final_reward.bin"))
	blocks := trackers.NewBlocks(filepath.Join(c.OutputDir, "blocks.bin"))

	exp, err := c.CreateExp(table, physics, returns, finalRewards, blocks)
	if err != nil {
		return err
	}

	if c.DBPath != "" {
		db, err := sql.Open("sqlite", c.DBPath)
		if err != nil {
			return fmt.Errorf("could not open database: %w", err)
		}
		defer db.Close()

		runID := uuid.NewString()
		tracker, err := trackers.NewSQLite(db, runID)
		if err != nil {
			return err
		}
		exp.Register(tracker)
		log.Info().Msgf("logging run %v to %v", runID, c.DBPath)
	}

	if c.Eval {
		log.Info().Msg("evaluating the greedy policy")
	}

	if c.Episodes > 0 && !*debug {
		bar := progressbar.NewManualProgressBar(os.Stdout, 40, c.Episodes)
		exp.SetProgressBar(bar)
		defer bar.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	log.Info().Msgf("starting %v experiment...", c.Tower.Task)
	runErr := exp.Run(ctx)

	// Flush everything learned so far, even if training failed
	if !c.Eval {
		if err := table.Save(c.TablePath); err != nil {
			return err
		}
		log.Info().Msgf("saved %v states to %v", table.Len(), c.TablePath)
	}
	if err := exp.Save(); err != nil {
		return err
	}

	chart := filepath.Join(c.OutputDir, "rewards.html")
	if err := trackers.WriteChart(chart, "Pyramid stacking",
		returns, finalRewards, blocks); err != nil {
		return err
	}
	log.Info().Msgf("wrote reward curves to %v", chart)

	summary(exp.Episodes(), exp.Best(), returns.Data())
	return runErr
}

// summary prints the outcome of the run to the console
func summary(episodes, best int, returns []float64) {
	fmt.Println()
	fmt.Println(aurora.Bold("Training summary"))
	fmt.Printf("  episodes:    %v\n", aurora.Cyan(episodes))
	fmt.Printf("  best blocks: %v\n", aurora.Green(best))

	if len(returns) == 0 {
		return
	}
	last := returns[len(returns)-1]
	colour := aurora.Green(fmt.Sprintf("%.2f", last))
	if last < 0 {
		colour = aurora.Red(fmt.Sprintf("%.2f", last))
	}
	fmt.Printf("  last return: %v\n", colour)
}
