package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/r3labs/sse/v2"

	"github.com/marcus-crane/mediabridge/bridge"
	"github.com/marcus-crane/mediabridge/config"
	"github.com/marcus-crane/mediabridge/db"
	"github.com/marcus-crane/mediabridge/events"
	"github.com/marcus-crane/mediabridge/mpris"
	"github.com/marcus-crane/mediabridge/peer"
	"github.com/marcus-crane/mediabridge/playback"
	"github.com/marcus-crane/mediabridge/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mediabridge exited with an error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Released however we end up shutting down
	client := utils.NewHTTPClient(cfg.Bridge.OutboundTimeout())
	defer client.CloseIdleConnections()

	manager, err := mpris.Connect(cfg.Bridge.Apps())
	if err != nil {
		return err
	}
	defer manager.Close()

	svc := bridge.NewService(manager, bridge.NewTracker(), bridge.Timeouts{
		Session:  cfg.Bridge.SessionBudget(),
		Metadata: cfg.Bridge.MetadataBudget(),
		Control:  cfg.Bridge.ControlBudget(),
	})

	var (
		ps          *playback.PlaybackSystem
		eventServer *sse.Server
	)
	if cfg.History.Enabled {
		database, err := db.Initialize(cfg.History.DbPath)
		if err != nil {
			return err
		}
		defer database.Close()

		eventServer = events.NewServer()
		defer eventServer.Close()

		ps = playback.NewPlaybackSystem(database, eventServer)

		scheduler, err := SetupInBackground(ctx, cfg, svc, ps)
		if err != nil {
			return err
		}
		scheduler.StartAsync()
		defer scheduler.Stop()
		slog.Info("History recorder has started up in the background")
	} else {
		slog.Info("History recorder is disabled")
	}

	peerClient := peer.NewClient(client, cfg.Bridge.PeerURL, peer.DefaultTimeout)

	router := RegisterRoutes(http.NewServeMux(), svc, ps, eventServer, peerClient)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if eventServer != nil {
		// Event streams never finish on their own
		srv.RegisterOnShutdown(eventServer.Close)
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("mediabridge is running", slog.String("addr", cfg.Server.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Gracefully shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
