package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/instabids/outreach/internal/campaign"
	"github.com/instabids/outreach/internal/config"
	"github.com/instabids/outreach/internal/db"
)

var tickCmd = &cobra.Command{
	Use:   "tick <campaign-id>",
	Short: "Run one escalation evaluation for a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runTick,
}

func init() {
	rootCmd.AddCommand(tickCmd)
}

func runTick(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for tick")
	}
	campaignID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid campaign id: %w", err)
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	c, err := database.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if c == nil {
		return &campaign.NotFoundError{CampaignID: campaignID}
	}
	avail, err := database.AvailabilityForJob(ctx, c.JobID)
	if err != nil {
		return err
	}

	sched := campaign.NewScheduler(database, database, campaign.Config{
		Rates: cfg.Rates(),
		Slack: cfg.SlackTolerance,
	})
	action, err := sched.Evaluate(ctx, campaignID, avail)
	if err != nil {
		return err
	}

	c, err = database.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"action":   action,
		"campaign": c,
	})
}
