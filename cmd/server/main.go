/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the wash book server: open the SQLite snapshot
  slot, load (and migrate) the persisted store, wire the HTTP surface, and
  shut down gracefully.

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: washbook.db)
           Use ":memory:" for an in-memory database
  -seed    Backfill demo companies when migrating a pre-companies snapshot
           (default: true)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database
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

	"github.com/warp/washbook/api"
	"github.com/warp/washbook/record"
	"github.com/warp/washbook/slot/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "washbook.db", "SQLite database path")
	seed := flag.Bool("seed", true, "backfill demo companies during migration")
	flag.Parse()

	slot, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open snapshot slot: %v", err)
	}
	defer slot.Close()

	keeper := record.NewKeeperWithOptions(slot, record.MigrateOptions{SeedDemoData: *seed})
	handler := api.NewHandler(context.Background(), keeper)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

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
