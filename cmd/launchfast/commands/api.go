package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BlockchainHB/launchfast-sub005/internal/api"
	"github.com/BlockchainHB/launchfast-sub005/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the research API server.

Endpoints:
  GET    /health                            - Health check
  POST   /api/overrides/batch               - Save overrides, recalc markets
  DELETE /api/overrides/{productID}         - Remove an override
  GET    /api/products/{id}/effective       - Product with override applied
  POST   /api/markets/{id}/recalculate      - Recompute one market
  POST   /api/markets/recalculate-affected  - Recompute markets of products
  GET    /api/markets/{id}/snapshot         - Live market snapshot

Example:
  go run ./cmd/launchfast api
  go run ./cmd/launchfast api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	log := d.logger
	log.WithFields(map[string]interface{}{
		"port": d.cfg.Port,
		"env":  d.cfg.Env,
	}).Info("Initializing API server")

	overrideHandler := handlers.NewOverrideHandler(d.orchestrator, d.overrides, log)
	marketHandler := handlers.NewMarketHandler(d.orchestrator, d.markets, d.cache, log)
	healthHandler := handlers.NewHealthHandler(d.db, d.redis, log)

	router := api.NewRouter(overrideHandler, marketHandler, healthHandler, log)
	server := api.New(d.cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
