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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/drcloud/assistant/config"
	"github.com/drcloud/assistant/internal/adapter/docstore"
	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/docpipe"
	"github.com/drcloud/assistant/internal/handlers"
	"github.com/drcloud/assistant/internal/orchestrator"
	"github.com/drcloud/assistant/internal/store"
	handler "github.com/drcloud/assistant/internal/transport/http"
	"github.com/drcloud/assistant/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting assistant...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Document store: %s", cfg.DocStoreURL)
	log.Printf("LLM URL: %s", cfg.LLMBaseURL)

	// Initialize conversation store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize document store
	docs, err := docstore.NewSQLiteDocStore(cfg.DocStoreURL)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}
	defer docs.Close()

	// Initialize text generator
	gen := llm.NewGenerator(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)

	// Initialize encounter policy engine
	ctx := context.Background()
	policyEngine, err := policy.LoadEngine(ctx, cfg.PolicyPath)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize documentation pipeline and handler registry
	pipe := docpipe.New(docs)
	registry := handlers.NewRegistry(gen, pipe)

	// Initialize orchestrator
	orch := orchestrator.New(db, registry, policyEngine, cfg)

	// Initialize HTTP handler
	h := handler.NewHandler(db, orch, docs)

	// Create Echo server
	server := echo.New()
	server.HideBanner = true

	// Middleware
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(server)
	h.MarkReady()

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down assistant...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Assistant stopped")
}
