package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"goLangClient/api"
	"goLangClient/config"
	"goLangClient/db"
	"goLangClient/game"
	"goLangClient/logging"
	"goLangClient/state"
	"goLangClient/ws"
)

// app is the part of the client both commands share: the chart, its hub, the
// viewer feed and the HTTP API.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	viewport *game.ResizableViewport
	chart    *game.Chart
	frames   *ws.FrameHub
	hub      *state.Hub
}

func loadApp(addr string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}

	log := logging.New(cfg.LogLevel)
	db.SetLogger(log)

	viewport := game.NewResizableViewport(cfg.Chart.ViewportWidth, cfg.Chart.ViewportHeight)
	return &app{
		cfg:      cfg,
		log:      log,
		viewport: viewport,
		chart:    game.NewChart(cfg.Chart.Options(), viewport),
		frames:   ws.NewFrameHub(viewport, log),
	}, nil
}

// initBackends connects the optional stores. A store that fails to come up
// is logged and left disabled.
func (a *app) initBackends() (recorder state.RoundRecorder, closeAll func()) {
	if a.cfg.Postgres.Enabled() {
		if err := db.InitPostgres(a.cfg.Postgres); err != nil {
			a.log.Warnf("⚠️  Warning: PostgreSQL initialization failed: %v", err)
			a.log.Warn("   Round archive will be disabled")
		}
	} else {
		a.log.Info("ℹ️  DATABASE_URL not set, round archive disabled")
	}

	if a.cfg.Redis.Enabled() {
		if err := db.InitRedis(a.cfg.Redis); err != nil {
			a.log.Warnf("⚠️  Warning: Redis initialization failed: %v", err)
			a.log.Warn("   Global leaderboard will be disabled")
		}
	} else {
		a.log.Info("ℹ️  REDIS_URL not set, global leaderboard disabled")
	}

	closeAll = func() {
		db.ClosePostgres()
		db.CloseRedis()
	}
	if db.PostgresPool == nil && db.RedisClient == nil {
		return nil, closeAll
	}
	return db.Archive{}, closeAll
}

func (a *app) newHub(sender state.Sender, recorder state.RoundRecorder) *state.Hub {
	opts := []state.HubOption{
		state.WithSender(ws.NewActionSender(sender, a.cfg.Players.ActionsPerSecond, config.ActionBurst)),
		state.WithPublisher(a.frames),
	}
	if recorder != nil {
		opts = append(opts, state.WithRecorder(recorder))
	}
	a.hub = state.NewHub(a.chart, a.log, opts...)
	return a.hub
}

// serveHTTP runs the API and the chart feed until ctx is done.
func (a *app) serveHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	api.NewHandler(a.hub, a.viewport, a.log).Register(mux)
	mux.Handle("/ws/chart", a.frames)

	server := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.log.Warnf("⚠️  HTTP server shutdown: %v", err)
		}
	}()

	a.log.Infof("🚀 Chart client listening on %s", a.cfg.HTTPAddr)
	a.log.Info("📡 WebSocket Endpoints:")
	a.log.Info("   /ws/chart - Laid-out frames; send {type:resize} to change the viewport")
	a.log.Info("🔌 API Endpoints:")
	a.log.Info("   GET  /api/chart - Latest frame")
	a.log.Info("   GET  /api/session - Game session")
	a.log.Info("   POST /api/viewport - Resize the chart")
	a.log.Info("   POST /api/action - Player all_in / all_out")
	a.log.Info("   POST /api/start, /api/join - Game control")
	a.log.Info("   GET  /api/leaderboard, /api/rounds, /api/rounds/:id - History")
	a.log.Info("   GET  /api/health - Health check")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
