package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/agentlisp"
	"github.com/aretw0/agentlisp/internal/cli"
	"github.com/aretw0/agentlisp/internal/logging"
	httpadapter "github.com/aretw0/agentlisp/pkg/adapters/http"
	"github.com/aretw0/agentlisp/pkg/observability"
	"github.com/aretw0/agentlisp/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [program]",
	Short: "Start the HTTP session server",
	Long: `Serves the program over a JSON API. Clients create sessions, run them to
their effect boundaries and post effect results; state lives in the
configured store, so sessions survive restarts.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetString("port")

		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		logger := logging.New(slog.LevelInfo)

		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		engine, err := agentlisp.New(programArg(args),
			agentlisp.WithLogger(logger),
			agentlisp.WithMetrics(metrics),
		)
		if err != nil {
			fmt.Printf("Error loading program: %v\n", err)
			os.Exit(1)
		}

		sessions, cleanup, err := cli.BuildManager(cfg, engine, logger,
			session.WithGauge(metrics.SessionsActive))
		if err != nil {
			fmt.Printf("Error setting up session store: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		handler := httpadapter.NewHandler(engine, sessions,
			httpadapter.WithLogger(logger),
			httpadapter.WithMetricsRegistry(registry),
			httpadapter.WithVersion(agentlisp.Version),
		)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting AgentLisp Server on %s\n", srv.Addr)
			fmt.Printf("Serving program: %s\n", engine.Name)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("AgentLisp Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
