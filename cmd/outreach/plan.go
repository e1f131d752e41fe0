package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/instabids/outreach/internal/config"
	"github.com/instabids/outreach/internal/planning"
	"github.com/instabids/outreach/internal/scoring"
	"github.com/instabids/outreach/internal/tier"
	"github.com/instabids/outreach/internal/types"
)

var planCmd = &cobra.Command{
	Use:   "plan <job.json> <candidates.json>",
	Short: "Score a candidate pool against a job and print the outreach plan",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

// planInput is the offline shape: candidates with optional engagement
// history so tier assignment works without a database.
type planInput struct {
	Candidate types.Candidate          `json:"candidate"`
	History   *types.EngagementHistory `json:"history,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var job types.Job
	if err := readJSONFile(args[0], &job); err != nil {
		return err
	}
	var inputs []planInput
	if err := readJSONFile(args[1], &inputs); err != nil {
		return err
	}

	candidates := make([]types.Candidate, 0, len(inputs))
	avail := make(planning.Availability)
	for _, in := range inputs {
		candidates = append(candidates, in.Candidate)
		h := types.EngagementHistory{}
		if in.History != nil {
			h = *in.History
		}
		avail[tier.Reclassify(h)]++
	}

	results, err := scoring.ScoreAll(cmd.Context(), candidates, &job)
	if err != nil {
		return err
	}
	plan := planning.Plan(&job, job.TargetResponses, avail, cfg.Rates())

	out := map[string]any{
		"plan":   plan,
		"scores": results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
