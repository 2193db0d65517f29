package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/planner"
	"github.com/vr00n/st-esb-planner/internal/site"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve planning data as a JSON API",
	Long:  "Exposes regions, sites, and target-duration routes as plain GeoJSON for an external map renderer.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// The region index is built once and shared read-only by all
		// request handlers.
		ix, source, err := loadRegionIndex(ctx, cfg)
		if err != nil {
			return err
		}
		oracle := newOracle(cfg)

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "boundary_source": source})
		})

		r.Get("/api/regions", func(w http.ResponseWriter, _ *http.Request) {
			respondJSON(w, http.StatusOK, planner.RegionsFeatureCollection(ix))
		})

		r.Get("/api/sites", func(w http.ResponseWriter, req *http.Request) {
			cols := queryInt(req, "cols", cfg.Grid.Cols)
			rows := queryInt(req, "rows", cfg.Grid.Rows)
			seed := uint64(queryInt(req, "seed", int(cfg.Grid.Seed)))

			rng := rand.New(rand.NewPCG(seed, seed))
			sites := site.Sample(ix, bboxFromConfig(cfg), cols, rows, rng)
			respondJSON(w, http.StatusOK, planner.SitesFeatureCollection(sites))
		})

		r.Get("/api/routes", func(w http.ResponseWriter, req *http.Request) {
			pcfg := plannerConfig(cfg)
			if count := queryInt(req, "count", 0); count > 0 {
				pcfg.RouteCount = count
			}
			if target := queryInt(req, "target_minutes", 0); target > 0 {
				pcfg.Search.TargetS = float64(target) * 60
			}

			plan, err := planner.New(ix, oracle, source, pcfg).Plan(req.Context())
			if err != nil {
				zap.L().Error("route planning failed", zap.Error(err))
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "route planning failed"})
				return
			}
			respondJSON(w, http.StatusOK, struct {
				Status planner.Status `json:"status"`
				Routes any            `json:"routes"`
			}{plan.Status, planner.RoutesFeatureCollection(plan.Routes)})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return eris.Wrap(err, "server listen")
		}

		zap.L().Info("starting server", zap.Int("port", port))
		return serveHTTP(ctx, &http.Server{Handler: r}, ln, 10*time.Second)
	},
}

// serveHTTP runs srv on ln until ctx is cancelled, then drains in-flight
// requests. The signal context is already cancelled at shutdown time, so
// draining runs under its own deadline.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener, drainTimeout time.Duration) error {
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server serve")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(req *http.Request, key string, fallback int) int {
	raw := req.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
