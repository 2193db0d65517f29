package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "esb-planner",
	Short: "Electric school bus depot siting planner",
	Long:  "Samples synthetic depot sites constrained to real administrative boundaries and searches an OSRM backend for routes near a target duration.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
