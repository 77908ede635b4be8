package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/config"
	"github.com/gil906/Python-solver-stepbystep/internal/infrastructure/server"
)

func main() {
	// Parse flags. Flags override the environment for the common knobs.
	port := flag.String("port", "", "Server port")
	dataDir := flag.String("data", "", "Run store directory")
	workerBin := flag.String("worker", "", "Trace worker binary path")
	dev := flag.Bool("dev", false, "Development mode (colored debug logs)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if *workerBin != "" {
		cfg.Sandbox.WorkerBin = *workerBin
	}
	if *dev {
		cfg.Logging.Development = true
	}

	// Create server
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
