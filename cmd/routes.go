package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/planner"
)

var routesOut string

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Search for routes near the target duration",
	Long:  "Samples depot sites, picks origins, and searches the routing backend for routes whose duration approximates the configured target.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ix, source, err := loadRegionIndex(ctx, cfg)
		if err != nil {
			return err
		}

		pcfg := plannerConfig(cfg)
		if count, _ := cmd.Flags().GetInt("count"); count > 0 {
			pcfg.RouteCount = count
		}
		if target, _ := cmd.Flags().GetFloat64("target-minutes"); target > 0 {
			pcfg.Search.TargetS = target * 60
		}

		p := planner.New(ix, newOracle(cfg), source, pcfg)
		plan, err := p.Plan(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("route search complete",
			zap.Int("found", plan.Status.RouteCount),
			zap.Int("target", plan.Status.RouteTarget),
		)

		out := struct {
			Status planner.Status `json:"status"`
			Routes any            `json:"routes"`
		}{
			Status: plan.Status,
			Routes: planner.RoutesFeatureCollection(plan.Routes),
		}
		return writeJSON(routesOut, out)
	},
}

func init() {
	routesCmd.Flags().Int("count", 0, "number of routes to find (default from config)")
	routesCmd.Flags().Float64("target-minutes", 0, "target route duration in minutes (default from config)")
	routesCmd.Flags().StringVar(&routesOut, "out", "", "output path (default stdout)")
	rootCmd.AddCommand(routesCmd)
}
