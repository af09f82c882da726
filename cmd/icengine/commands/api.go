package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/investorcenter/icengine/internal/api"
	"github.com/investorcenter/icengine/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the score-serving API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                            - Health check
  GET  /api/scores/{ticker}               - Latest score
  GET  /api/scores/{ticker}/history       - Score history
  POST /api/scores/{ticker}/refresh       - On-demand rescore
  GET  /api/sectors/{sector}/ranking      - Sector ranking

Example:
  go run ./cmd/icengine api
  go run ./cmd/icengine api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	scoreHandler := handlers.NewScoreHandler(rt.scores, rt.runner, rt.log)
	healthHandler := handlers.NewHealthHandler(rt.db, rt.rdb, rt.log)
	router := api.NewRouter(scoreHandler, healthHandler, rt.log)
	server := api.New(rt.cfg, rt.log, router)

	go func() {
		if err := server.Start(); err != nil {
			rt.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", rt.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
