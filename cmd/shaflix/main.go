package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shaflix/shaflix/internal/config"
	"github.com/shaflix/shaflix/internal/database"
	"github.com/shaflix/shaflix/internal/events"
	"github.com/shaflix/shaflix/internal/logger"
	"github.com/shaflix/shaflix/internal/server"
)

func main() {
	fmt.Println("=======================================")
	fmt.Println("       Shaflix - Movie Tracking        ")
	fmt.Println("=======================================")

	// Initialize configuration system first
	configPath := os.Getenv("SHAFLIX_CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat("./shaflix.yaml"); err == nil {
			configPath = "./shaflix.yaml"
		}
	}

	if err := config.Load(configPath); err != nil {
		log.Printf("Warning: Failed to load configuration from %s: %v", configPath, err)
		log.Printf("Using default configuration")
	} else if configPath != "" {
		log.Printf("Configuration loaded from: %s", configPath)
	} else {
		log.Printf("Using default configuration")
	}

	logger.SetLevel(config.Get().Logging.Level)

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.WaitForReady(30 * time.Second); err != nil {
		log.Fatalf("Database did not become ready: %v", err)
	}

	// Setup router with all modules
	r := server.SetupRouter()

	if bus := server.GetEventBus(); bus != nil {
		bus.PublishAsync(events.NewSystemEvent(events.EventSystemStarted, "Server Started", ""))
	}

	cfg := config.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\nShutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		if bus := server.GetEventBus(); bus != nil {
			if err := bus.Publish(shutdownCtx, events.NewSystemEvent(events.EventSystemStopped, "Server Stopped", "")); err != nil {
				log.Printf("Failed to record shutdown event: %v", err)
			}
		}

		if err := server.ShutdownEventBus(); err != nil {
			log.Printf("Event bus shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting Shaflix server on %s:%d", cfg.Server.Host, cfg.Server.Port)
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
