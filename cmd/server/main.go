package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/segyhp/lending-registry/internal/config"
	"github.com/segyhp/lending-registry/internal/handler"
	"github.com/segyhp/lending-registry/internal/repository"
	"github.com/segyhp/lending-registry/internal/service"
	"github.com/segyhp/lending-registry/pkg/response"
	"github.com/segyhp/lending-registry/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetFlags(cfg.Logging.Flags())

	ctx := context.Background()

	store, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer store.Close()

	clock := utils.SystemClock{Location: cfg.Location()}
	lendingService := service.NewLendingService(store.Snapshots, cfg.Lending, clock, service.LogNotifier())
	if err := lendingService.Load(ctx); err != nil {
		log.Fatalf("Failed to load registry %s: %v", cfg.Lending.RegistryName, err)
	}

	lendingHandler := handler.NewLendingHandler(lendingService)
	healthHandler := handler.NewHealthHandler(store.DB, store.Redis, cfg.Health.Timeout)

	router := setupRoutes(lendingHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s (%s)", server.Addr, cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func setupRoutes(lendingHandler *handler.LendingHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware, response.CORSMiddleware)

	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods(http.MethodGet)

	lendingHandler.RegisterRoutes(router)

	return router
}
