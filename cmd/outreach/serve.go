package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/instabids/outreach/internal/campaign"
	"github.com/instabids/outreach/internal/config"
	"github.com/instabids/outreach/internal/db"
	"github.com/instabids/outreach/internal/dispatch"
	"github.com/instabids/outreach/internal/planning"
	"github.com/instabids/outreach/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the operator HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for serve")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required for serve")
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	sched := campaign.NewScheduler(database, database, campaign.Config{
		Rates: cfg.Rates(),
		Slack: cfg.SlackTolerance,
	})

	availability := func(ctx context.Context, campaignID uuid.UUID) (planning.Availability, error) {
		c, err := database.GetCampaign(ctx, campaignID)
		if err != nil || c == nil {
			return nil, err
		}
		return database.AvailabilityForJob(ctx, c.JobID)
	}

	runner := campaign.NewRunner(sched, availability, time.Duration(cfg.TickSeconds)*time.Second)
	dispatcher := dispatch.New(database, dispatch.LogSink{})

	srv := server.New(cfg, server.Deps{
		Campaigns:    database,
		Ledger:       database,
		Candidates:   database,
		Tiers:        database,
		Scheduler:    sched,
		Dispatcher:   dispatcher,
		Availability: availability,
		Runner:       runner,
	})
	return srv.Start()
}
