package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"goLangClient/config"
	"goLangClient/crypto"
	"goLangClient/db"
	"goLangClient/sim"
	"goLangClient/state"
)

type simOptions struct {
	addr  string
	data  string
	stock string
	seed  string
	ticks int
	loop  bool
}

func newSimCmd() *cobra.Command {
	opts := &simOptions{}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Chart a simulated round from stock CSVs or a seeded random walk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSim(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&opts.data, "data", "", "directory of <SYMBOL>.csv files (overrides STOCK_DATA_PATH)")
	cmd.Flags().StringVar(&opts.stock, "stock", "", "stock to replay (random if empty)")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "fixed random walk seed, used when no CSVs are found")
	cmd.Flags().IntVar(&opts.ticks, "ticks", config.MaxTicks, "ticks per round")
	cmd.Flags().BoolVar(&opts.loop, "loop", true, "start a new round after each one ends")
	return cmd
}

func runSim(ctx context.Context, opts *simOptions) error {
	a, err := loadApp(opts.addr)
	if err != nil {
		return err
	}
	if opts.data != "" {
		a.cfg.StockDataPath = opts.data
	}

	recorder, closeBackends := a.initBackends()
	defer closeBackends()

	source := a.stockSource(opts)

	serverOpts := []sim.Option{sim.WithMaxTicks(opts.ticks)}
	if db.RedisClient != nil {
		serverOpts = append(serverOpts, sim.WithLeaderboard(db.Leaderboard{}))
	}
	if opts.loop {
		serverOpts = append(serverOpts, sim.WithAutoRestart(config.SimRestartDelay))
	}
	server := sim.NewServer(source, a.log, serverOpts...)
	hub := a.newHub(server, recorder)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { a.frames.Run(ctx); return nil })
	g.Go(func() error {
		return server.Run(ctx, func(env state.Envelope) error { return hub.Deliver(ctx, env) })
	})
	g.Go(func() error { return a.serveHTTP(ctx) })
	g.Go(func() error {
		if err := hub.Join(ctx, a.cfg.Players.PlayerNames()); err != nil {
			return fmt.Errorf("join: %w", err)
		}
		if err := hub.StartGame(ctx, opts.stock); err != nil {
			return fmt.Errorf("start: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// stockSource prefers CSVs on disk and falls back to a random walk.
func (a *app) stockSource(opts *simOptions) sim.StockSource {
	if stocks, err := sim.AvailableStocks(a.cfg.StockDataPath); err == nil && len(stocks) > 0 {
		a.log.Infof("📈 Replaying %d stocks from %s", len(stocks), a.cfg.StockDataPath)
		return sim.NewDirSource(a.cfg.StockDataPath)
	} else if err != nil && !os.IsNotExist(err) {
		a.log.Warnf("⚠️  Cannot read stock data: %v", err)
	}

	a.log.Info("🎲 No stock CSVs found, using a seeded random walk")
	return sim.WalkSource{
		Ticks: opts.ticks,
		Seed:  opts.seed,
		OnSeed: func(rs crypto.RoundSeed) {
			a.log.Infof("🔐 Round seed committed: %s (revealed seed %s)", rs.Hash, rs.Seed)
		},
	}
}
