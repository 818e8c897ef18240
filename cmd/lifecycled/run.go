package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tradepost/internal/bus"
	"tradepost/internal/config"
	"tradepost/internal/db"
	"tradepost/internal/jobs"
	"tradepost/internal/scheduler"
	"tradepost/internal/store"
)

func newRunCommand() *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:       "run {deletion|audit}",
		Short:     "Execute one lifecycle job immediately and print its report",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"deletion", "audit"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), args[0], publish)
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the job report to NATS as a scheduled run would")
	return cmd
}

func runOnce(ctx context.Context, name string, publish bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

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

	var job jobs.Job
	switch name {
	case "deletion":
		job = jobs.NewDeletionJob(st, log.Logger)
	case "audit":
		job = jobs.NewAuditJob(st, log.Logger)
	default:
		return fmt.Errorf("unknown job %q", name)
	}

	var pub scheduler.Publisher
	if publish && cfg.NATSURL != "" {
		reports, err := bus.New(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer reports.Close()
		pub = reports
	}

	res := scheduler.New(log.Logger, pub).RunOnce(ctx, job)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !res.Success {
		return fmt.Errorf("job %s reported failure", res.Job)
	}
	return nil
}
