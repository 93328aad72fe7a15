/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the loan approval analytics server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load config file + env overrides
  2. Initialize the SQLite snapshot cache and seed reference tables
  3. Resolve the status taxonomy
  4. Connect to the warehouse (or seed the demo source)
  5. Configure the HTTP router
  6. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config/secrets file (TOML); env overrides use LOANLENS_*
  -port    HTTP server port override
  -db      Snapshot cache path override (":memory:" supported)
  -demo    Serve the built-in sample data; no warehouse needed

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close warehouse and cache connections
  4. Exit

EXAMPLES:
  # Production: warehouse DSN from the secrets file
  ./server -config=/etc/loanlens/config.toml

  # Local demo with sample data, cache in memory
  ./server -demo -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration keys
  - store/sqlite/sqlite.go: Snapshot cache
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridian/loan-analytics/api"
	"github.com/meridian/loan-analytics/config"
	"github.com/meridian/loan-analytics/factory"
	"github.com/meridian/loan-analytics/loan"
	"github.com/meridian/loan-analytics/source"
	"github.com/meridian/loan-analytics/store/sqlite"
)

func main() {
	// Flags
	cfgPath := flag.String("config", "", "config/secrets file (TOML)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "snapshot cache path (overrides config)")
	demo := flag.Bool("demo", false, "serve built-in sample data instead of the warehouse")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Cache.Path = *dbPath
	}

	// Initialize snapshot cache
	store, err := sqlite.New(cfg.Cache.Path)
	if err != nil {
		log.Fatalf("Failed to initialize cache database: %v", err)
	}
	defer store.Close()

	if err := store.SeedReferenceDefaults(context.Background()); err != nil {
		log.Printf("Warning: Failed to seed reference tables: %v", err)
	}

	// Resolve the status taxonomy
	var taxonomy loan.Taxonomy
	if cfg.Taxonomy.File != "" {
		taxonomy, err = factory.LoadFile(cfg.Taxonomy.File)
	} else {
		taxonomy, err = factory.Builtin(cfg.Taxonomy.Name)
	}
	if err != nil {
		log.Fatalf("Failed to load taxonomy: %v", err)
	}

	// Connect the data source
	var src source.Source
	switch {
	case *demo:
		src = source.Sample(cfg.Warehouse.Table)
		log.Printf("Demo mode: serving built-in sample data")
	case cfg.Warehouse.DSN != "":
		warehouse, err := source.Open(cfg.Warehouse.Driver, cfg.Warehouse.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to warehouse: %v", err)
		}
		defer warehouse.Close()
		src = warehouse
	default:
		log.Printf("Warning: no warehouse DSN configured; serving cached snapshots only")
	}

	// Initialize handler and router
	handler := api.NewHandler(src, store, taxonomy, cfg.Warehouse.Table, cfg.Cache.TTL, cfg.Warehouse.Limit)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("📊 Views available at http://localhost:%d/api/views", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
