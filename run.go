package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"goLangClient/state"
	"goLangClient/ws"
)

type runOptions struct {
	server string
	addr   string
	join   bool
	stock  string
	start  bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to a live game server and chart its price feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClient(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "game server websocket URL (overrides GAME_SERVER_URL)")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVar(&opts.join, "join", true, "join the game with the configured players on connect")
	cmd.Flags().BoolVar(&opts.start, "start", false, "ask the server to start a round after joining")
	cmd.Flags().StringVar(&opts.stock, "stock", "", "stock to start with (random if empty)")
	return cmd
}

func runClient(ctx context.Context, opts *runOptions) error {
	a, err := loadApp(opts.addr)
	if err != nil {
		return err
	}
	if opts.server != "" {
		a.cfg.GameServerURL = opts.server
	}

	recorder, closeBackends := a.initBackends()
	defer closeBackends()

	var hub *state.Hub
	client := ws.NewClient(ws.DefaultClientConfig(a.cfg.GameServerURL), func(ctx context.Context, env state.Envelope) error {
		return hub.Deliver(ctx, env)
	}, a.log)
	hub = a.newHub(client, recorder)

	client.OnConnect(onConnect(hub, opts, a.cfg.Players.PlayerNames(), a.log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { a.frames.Run(ctx); return nil })
	g.Go(func() error { return client.Run(ctx) })
	g.Go(func() error { return a.serveHTTP(ctx) })
	return g.Wait()
}

// gameControl is the part of the hub a connect hook drives.
type gameControl interface {
	Session() state.SessionView
	Join(ctx context.Context, names []string) error
	RequestState(ctx context.Context) error
	StartGame(ctx context.Context, symbol string) error
}

// onConnect runs after every dial. Joining resets every player on the server,
// so a reconnect during a running round only resyncs state.
func onConnect(game gameControl, opts *runOptions, names []string, log logrus.FieldLogger) func(ctx context.Context) {
	return func(ctx context.Context) {
		running := game.Session().Phase == state.PhaseRunning

		if opts.join && !running {
			if err := game.Join(ctx, names); err != nil {
				log.Warnf("⚠️  Join failed: %v", err)
				return
			}
		}
		if err := game.RequestState(ctx); err != nil {
			log.Warnf("⚠️  State request failed: %v", err)
		}
		if opts.start && !running {
			if err := game.StartGame(ctx, opts.stock); err != nil {
				log.Warnf("⚠️  Start failed: %v", err)
			}
		}
	}
}
