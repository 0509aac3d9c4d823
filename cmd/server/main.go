/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Fleetline asset engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and config.yaml
  2. Parse command-line flags (flags override config)
  3. Initialize SQLite store
  4. Wire engine services and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database
  -config  Directory containing config.yaml (default: ".")

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

ENVIRONMENT:
  ASSET_SERVER_PORT, ASSET_DATABASE_PATH, ASSET_LOG_LEVEL override the
  config file; a .env file in the working directory is loaded first.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fleetline/asset-engine/api"
	"github.com/fleetline/asset-engine/config"
	"github.com/fleetline/asset-engine/engine"
	"github.com/fleetline/asset-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.String("port", "", "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	configDir := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	// Initialize store
	st, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer st.Close()

	// Wire engine services
	ledger := engine.NewLedger(st, st)
	locks := engine.NewAssetLocker()
	catalog := engine.NewCatalog(st, ledger, st, locks)
	entitlements := engine.NewEntitlements(st, ledger, st, locks)
	workflow := engine.NewWorkflow(st, entitlements)
	importer := engine.NewImporter(catalog)

	handler := &api.Handler{
		Catalog:      catalog,
		Entitlements: entitlements,
		Workflow:     workflow,
		Ledger:       ledger,
		Importer:     importer,
		Users:        st,
		Log:          log,
		HorizonDays:  cfg.Reminders.HorizonDays,
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port": cfg.Server.Port,
			"db":   cfg.Database.Path,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
