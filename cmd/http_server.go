package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/performance"
	"github.com/frahmantamala/attendance-engine/internal/transport/rest"
	"github.com/frahmantamala/attendance-engine/pkg/telemetry"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle kiosk and dashboard requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	ctx := context.Background()

	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	shutdownTracer, err := telemetry.InitTracer(ctx, deps.Config.Observability.Tracing)
	if err != nil {
		deps.Logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}

	if _, err := rest.LoadOpenAPI(ctx, rest.OpenAPIPath); err != nil {
		deps.Logger.Warn("openapi document not served correctly", "error", err)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:      rest.NewHealthHandler(deps.DB),
		Attendance:  attendance.NewHandler(deps.Attendance),
		Performance: performance.NewHandler(deps.Performance),
	}, deps.Verifier, deps.Config.Security, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "timezone", deps.Location.String())

	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "api"),
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// events published by the last requests still need forwarding
		if err := deps.Bus.Drain(ctx); err != nil {
			deps.Logger.Warn("event bus drain timed out", "error", err)
		}
		if err := shutdownTracer(ctx); err != nil {
			deps.Logger.Error("Tracer shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}
