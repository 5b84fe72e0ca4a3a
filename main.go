package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aquacheck/internal/config"
	"aquacheck/internal/container"
	"aquacheck/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run owns every resource so deferred cleanup completes before main exits.
func run() error {
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create application container: %w", err)
	}
	defer func() {
		if err := appContainer.Shutdown(context.Background()); err != nil {
			log.Printf("Container shutdown error: %v", err)
		}
	}()

	if err := appContainer.InitWithDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize model registry: %w", err)
	}

	// The service does not start without a usable classifier.
	if err := appContainer.LoadModel(ctx); err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	server, err := ui.NewServer(ui.Config{
		Port:    appConfig.Server.Port,
		GinMode: appConfig.Server.GinMode,
		Theme:   appConfig.UI.Theme,
	}, appContainer.Analysis, appContainer.APIHandler(), appContainer.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting aquacheck server on port %s", appConfig.Server.Port)
	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	// Start returns as soon as the listener closes; wait for in-flight requests.
	<-done
	return nil
}
