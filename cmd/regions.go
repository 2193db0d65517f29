package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/planner"
)

var regionsOut string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Load boundary regions and report the source used",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ix, source, err := loadRegionIndex(ctx, cfg)
		if err != nil {
			return err
		}

		zap.L().Info("region index built",
			zap.String("source", source),
			zap.Int("regions", ix.Len()),
		)

		fc := planner.RegionsFeatureCollection(ix)
		return writeJSON(regionsOut, fc)
	},
}

// writeJSON marshals v to the given path, or stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal output")
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

func init() {
	regionsCmd.Flags().StringVar(&regionsOut, "out", "", "output path (default stdout)")
	rootCmd.AddCommand(regionsCmd)
}
