package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/majeanson/newjo-sub001/internal/config"
	"github.com/majeanson/newjo-sub001/internal/events"
	"github.com/majeanson/newjo-sub001/internal/handlers"
	"github.com/majeanson/newjo-sub001/internal/httpapi"
	"github.com/majeanson/newjo-sub001/internal/store"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("open store", zap.Error(err))
		}
		st = pg
	} else {
		log.Info("no DATABASE_URL, using in-memory store")
		st = store.NewMemory()
	}

	bus := events.NewBus(log)
	defer bus.Close()

	svc := handlers.NewService(st, bus, log)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(svc, bus, log, cfg.HeartbeatInterval),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
