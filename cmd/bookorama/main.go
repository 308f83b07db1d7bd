package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/pbp/bookorama/internal/config"
	"github.com/pbp/bookorama/internal/logger"
	"github.com/pbp/bookorama/internal/server"
	"github.com/pbp/bookorama/internal/storage"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal(err)
	}
	logg := logger.Get(cfg.Debug)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		<-c

		logg.Debug().Msg("os signal caught, cancelling")
		cancel()
	}()

	var stor server.Storage
	if err = storage.Migrations(cfg.DBDsn, cfg.MigratePath); err != nil {
		logg.Error().Err(err).Msg("migrations failed")
	}
	stor, err = storage.NewDB(ctx, cfg.DBDsn)
	if err != nil {
		logg.Error().Err(err).Msg("connecting to database failed, falling back to memory storage")
		stor = storage.New()
	}

	serv := server.New(*cfg, stor)
	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return serv.Run(gCtx)
	})
	group.Go(func() error {
		return <-serv.ErrChan
	})
	group.Go(func() error {
		<-gCtx.Done()
		return serv.ShutdownServer()
	})

	if err = group.Wait(); err != nil {
		logg.Info().Str("stopping reason", err.Error()).Msg("server stopped")
		return
	}
	logg.Info().Msg("server stopped")
}
