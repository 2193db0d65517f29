package main

import (
	"math/rand/v2"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/planner"
	"github.com/vr00n/st-esb-planner/internal/site"
)

var sitesOut string

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Generate constrained depot sites as GeoJSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ix, source, err := loadRegionIndex(ctx, cfg)
		if err != nil {
			return err
		}

		cols, _ := cmd.Flags().GetInt("cols")
		rows, _ := cmd.Flags().GetInt("rows")
		seed, _ := cmd.Flags().GetUint64("seed")

		rng := rand.New(rand.NewPCG(seed, seed))
		sites := site.Sample(ix, bboxFromConfig(cfg), cols, rows, rng)

		zap.L().Info("sites generated",
			zap.String("boundary_source", source),
			zap.Int("sites", len(sites)),
			zap.Int("lattice", cols*rows),
		)

		return writeJSON(sitesOut, planner.SitesFeatureCollection(sites))
	},
}

func init() {
	sitesCmd.Flags().Int("cols", 18, "lattice columns")
	sitesCmd.Flags().Int("rows", 12, "lattice rows")
	sitesCmd.Flags().Uint64("seed", 42, "sampling seed")
	sitesCmd.Flags().StringVar(&sitesOut, "out", "", "output path (default stdout)")
	rootCmd.AddCommand(sitesCmd)
}
