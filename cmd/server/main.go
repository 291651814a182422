package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openfsis/fsis/internal/config"
	"github.com/openfsis/fsis/internal/database"
	"github.com/openfsis/fsis/internal/middleware"
	"github.com/openfsis/fsis/internal/sample"
	"github.com/openfsis/fsis/internal/template"
	"github.com/openfsis/fsis/internal/uploads"
	"github.com/openfsis/fsis/internal/workflow"
	wfmodel "github.com/openfsis/fsis/internal/workflow/model"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"db_sslmode", cfg.Database.SSLMode,
	)

	slog.Info("server configuration",
		"port", cfg.Server.Port,
		"storage_type", cfg.Storage.Type,
		"main_path_max_position", cfg.Workflow.MainPathMaxPosition,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Perform health check
	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	// Run schema migration
	if err := database.Migrate(db,
		&wfmodel.WorkflowNode{},
		&wfmodel.WorkflowTransition{},
		&wfmodel.SampleWorkflowState{},
		&sample.Sample{},
		&template.DocumentTemplate{},
		&uploads.EvidenceFile{},
	); err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}

	// Open the offline sample mirror (still SQLite, field devices sync into it)
	localStore, err := sample.OpenLocalStore(cfg.LocalStore.Path)
	if err != nil {
		log.Fatalf("failed to open local sample store: %v", err)
	}
	defer func() {
		if err := localStore.Close(); err != nil {
			slog.Error("failed to close local sample store", "error", err)
		}
	}()

	// Initialize evidence storage
	storage, err := uploads.NewStorageFromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize evidence storage: %v", err)
	}

	// Initialize services
	sampleService := sample.NewService(db, localStore)
	templateService := template.NewService(db)
	uploadService := uploads.NewUploadService(db, storage)

	// Initialize workflow manager; the sample registry doubles as the
	// lab-field syncer and the snapshot provider for the resolver
	wm := workflow.NewManager(db, cfg.Workflow.MainPathMaxPosition, sampleService, sampleService, templateService)

	// Set up HTTP routes
	mux := http.NewServeMux()
	wm.RegisterRoutes(mux)
	sample.NewRouter(sampleService).RegisterRoutes(mux)
	template.NewRouter(templateService).RegisterRoutes(mux)
	uploads.NewHTTPHandler(uploadService).RegisterRoutes(mux)

	// Set up graceful shutdown
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Wrap handler with CORS middleware
	handler := middleware.CORS(&cfg.CORS)(mux)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown of HTTP server
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
