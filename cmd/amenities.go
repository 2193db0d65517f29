package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/amenity"
)

var (
	amenitiesFile    string
	amenitiesOut     string
	amenitiesRegions []string
	amenitiesVerbose bool
)

var amenitiesCmd = &cobra.Command{
	Use:   "amenities",
	Short: "Attribute amenity features to containing regions",
	Long:  "Reads a GeoJSON feature collection (e.g. charging stations), resolves each feature's containing region, and emits the spatially filtered subset. Malformed features are excluded, not errors.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		data, err := os.ReadFile(amenitiesFile)
		if err != nil {
			return eris.Wrapf(err, "read %s", amenitiesFile)
		}

		var coll amenity.Collection
		if err := json.Unmarshal(data, &coll); err != nil {
			return eris.Wrapf(err, "parse %s", amenitiesFile)
		}

		ix, source, err := loadRegionIndex(ctx, cfg)
		if err != nil {
			return err
		}

		var opts []amenity.JoinOption
		if amenitiesVerbose {
			opts = append(opts, amenity.Verbose())
		}
		kept := amenity.FilterByRegion(coll.Features, ix, amenitiesRegions, opts...)

		zap.L().Info("amenity join complete",
			zap.String("boundary_source", source),
			zap.Int("input", len(coll.Features)),
			zap.Int("kept", len(kept)),
		)

		return writeJSON(amenitiesOut, amenity.Collection{Type: "FeatureCollection", Features: kept})
	},
}

func init() {
	amenitiesCmd.Flags().StringVar(&amenitiesFile, "file", "", "input GeoJSON feature collection")
	amenitiesCmd.Flags().StringVar(&amenitiesOut, "out", "", "output path (default stdout)")
	amenitiesCmd.Flags().StringSliceVar(&amenitiesRegions, "region", nil, "keep only features in these regions (default all)")
	amenitiesCmd.Flags().BoolVar(&amenitiesVerbose, "verbose", false, "log each unresolvable feature")
	_ = amenitiesCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(amenitiesCmd)
}
