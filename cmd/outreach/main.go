// Package main provides the entry point for the contractor outreach
// engine CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Contractor matching and outreach campaign engine",
	Long:  "outreach matches contractors to posted jobs, contacts them in trust tiers, and escalates outreach against time-based checkpoints until enough bids arrive.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to JSON config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
