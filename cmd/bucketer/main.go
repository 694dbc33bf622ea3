package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/handbucket/poker"
	"github.com/lox/handbucket/sdk/abstraction"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train  TrainCmd  `cmd:"" default:"withargs" help:"sample, cluster, and persist the centroid store"`
	Bucket BucketCmd `cmd:"" help:"look up the bucket ID for a hand and board"`
	Rank   RankCmd   `cmd:"" help:"evaluate a 5-7 card hand"`
	Odds   OddsCmd   `cmd:"" help:"estimate heads-up equity against a random hand"`
}

type TrainCmd struct {
	Out     string `help:"output directory for data/ and logs/" default:"output"`
	Seed    int64  `help:"base sampler seed" default:"100"`
	Workers int    `help:"worker count; 0 uses all CPUs" default:"0"`
	Config  string `help:"optional HCL config overriding training parameters" type:"existingfile"`
}

func (c *TrainCmd) Run(logger *log.Logger) error {
	cfg := abstraction.DefaultConfig()
	cfg.OutputDir = c.Out
	cfg.Seed = c.Seed
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.Config != "" {
		if err := applyFileConfig(c.Config, &cfg); err != nil {
			return fmt.Errorf("load config %s: %w", c.Config, err)
		}
	}

	trainer, err := abstraction.NewTrainer(cfg, abstraction.WithLogger(logger))
	if err != nil {
		return err
	}
	return trainer.GenerateCentroids(context.Background())
}

type BucketCmd struct {
	Store string `help:"path to the centroid store" default:"output/data/centroids.dat"`
	Hand  string `arg:"" help:"two hole cards, e.g. AsKs"`
	Board string `arg:"" optional:"" help:"board cards, e.g. Qs7d2c"`
}

func (c *BucketCmd) Run(logger *log.Logger) error {
	cards, err := poker.ParseCards(c.Hand + c.Board)
	if err != nil {
		return err
	}
	if len(cards) < 2 {
		return errors.New("hand must contain two cards")
	}
	hand := [2]poker.CardIndex{cards[0], cards[1]}
	board := cards[2:]

	if len(board) == 0 {
		fmt.Println(abstraction.PreflopBucket(hand[0], hand[1]))
		return nil
	}
	if _, ok := abstraction.StreetForBoard(len(board)); !ok {
		return fmt.Errorf("board must contain 3, 4, or 5 cards, got %d", len(board))
	}

	bucketer, err := abstraction.LoadBucketer(c.Store)
	if err != nil {
		return err
	}
	fmt.Println(bucketer.Bucket(hand, board))
	return nil
}

type RankCmd struct {
	Cards string `arg:"" help:"five to seven cards, e.g. AsKsQsJsTs"`
}

func (c *RankCmd) Run(logger *log.Logger) error {
	cards, err := poker.ParseCards(c.Cards)
	if err != nil {
		return err
	}
	if len(cards) < 5 || len(cards) > 7 {
		return fmt.Errorf("hand must contain 5-7 cards, got %d", len(cards))
	}

	rank := poker.EvalIndices(cards)
	fmt.Printf("%d %s\n", int(rank), rank.Category())
	return nil
}

type OddsCmd struct {
	Hand       string `arg:"" help:"two hole cards, e.g. AsKs"`
	Board      string `arg:"" optional:"" help:"board cards (0-5), e.g. Qs7d2c"`
	Iterations int    `short:"i" help:"Monte Carlo samples" default:"100000"`
	Workers    int    `help:"worker count; 0 uses all CPUs" default:"0"`
	Seed       int64  `help:"random seed" default:"1"`
}

func (c *OddsCmd) Run(logger *log.Logger) error {
	cards, err := poker.ParseCards(c.Hand + c.Board)
	if err != nil {
		return err
	}
	if len(cards) < 2 || len(cards) > 7 {
		return fmt.Errorf("expected a hand plus 0-5 board cards, got %d cards", len(cards))
	}
	hand := [2]poker.CardIndex{cards[0], cards[1]}
	board := cards[2:]

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	equity := poker.EstimateEquityParallel(hand, board, c.Iterations, workers, c.Seed)
	fmt.Printf("%.2f%%\n", equity*100)
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("bucketer"),
		kong.Description("Hand abstraction trainer and bucket lookup for heads-up NLHE"),
		kong.UsageOnError(),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if cli.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	if err := ctx.Run(logger); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}
