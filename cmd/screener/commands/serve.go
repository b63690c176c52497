package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SaChIn5419/stock-screener/internal/api"
	"github.com/SaChIn5419/stock-screener/internal/api/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET /health                  - Health check
  GET /api/screen?mode=&top=   - Run a screening pass
  GET /api/validate/{symbol}   - Data-quality verdict for one symbol
  GET /api/sentiment           - Aggregate market mood

Example:
  go run ./cmd/screener serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	router := api.NewRouter(
		handlers.NewScreenHandler(a.screener, a.cfg.Screen.Workers, a.log),
		handlers.NewValidateHandler(a.provider, a.validator, a.log),
		handlers.NewSentimentHandler(a.sentiment),
		a.log,
	)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
