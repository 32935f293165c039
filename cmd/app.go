package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/lingopeer/lingopeer/internal/application/config"
	"github.com/lingopeer/lingopeer/internal/application/constant"
	"github.com/lingopeer/lingopeer/internal/application/metric"
	"github.com/lingopeer/lingopeer/internal/directory"
	"github.com/lingopeer/lingopeer/internal/domain/events"
	"github.com/lingopeer/lingopeer/internal/infra/ports/http/handlers"
	"github.com/lingopeer/lingopeer/internal/infra/ports/http/server"
	"github.com/lingopeer/lingopeer/internal/infra/postgres"
	"github.com/lingopeer/lingopeer/internal/infra/postgres/repository"
	"github.com/lingopeer/lingopeer/internal/room"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	slog.Info("Running app", slog.Bool("debug", cfg.Debug))

	dbConn, err := postgres.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	roomRepo := repository.NewRoomRepo(dbConn)

	dirSync := directory.NewSync(roomRepo)

	dispatcher := room.NewDispatcher(cfg.Room.DefaultCapacity, events.Limits{
		MaxChatLength:  cfg.Room.MaxChatLength,
		MaxImageBytes:  cfg.Room.MaxImageBytes,
		MaxSignalBytes: cfg.Room.MaxSignalBytes,
	}, dirSync)

	roomHandler := handlers.NewRoomHandler(roomRepo, cfg.Room.DefaultCapacity)
	iceHandler := handlers.NewIceHandler(cfg)
	wsHandler := handlers.NewWebSocketHandler(cfg, dispatcher)

	echoSrv := server.New(cfg, roomHandler, iceHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
