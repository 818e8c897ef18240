package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tradepost/internal/bus"
	"tradepost/internal/config"
	"tradepost/internal/db"
	"tradepost/internal/handlers"
	"tradepost/internal/jobs"
	"tradepost/internal/otel"
	"tradepost/internal/scheduler"
	"tradepost/internal/store"
	"tradepost/internal/version"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the operational HTTP endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve()
		},
	}
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	cleanup, err := otel.Init(ctx, version.Name, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	database, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}

	st := store.NewGorm(database)

	var pub scheduler.Publisher
	if cfg.NATSURL != "" {
		reports, err := bus.New(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer reports.Close()
		pub = reports
	}

	sched := scheduler.New(log.Logger, pub)
	if err := sched.Register(ctx, cfg.DeletionSchedule, jobs.NewDeletionJob(st, log.Logger)); err != nil {
		return err
	}
	if err := sched.Register(ctx, cfg.AuditSchedule, jobs.NewAuditJob(st, log.Logger)); err != nil {
		return err
	}
	sched.Start(ctx)
	defer sched.Stop()

	r := handlers.Router(handlers.RouterOptions{
		Ready: func(req *http.Request) error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(req.Context())
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting lifecycled")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
	return nil
}
