package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/simaogato/portfoy-backend/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: true,
		Output: os.Stderr,
	})

	rootCmd := &cobra.Command{
		Use:   "portfoyctl",
		Short: "Inspect and rebalance a portfolio",
		Long: `portfoyctl computes rebalance reports, either offline from a JSON
portfolio file or from a running portfoy server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRebalanceCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newProfilesCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
