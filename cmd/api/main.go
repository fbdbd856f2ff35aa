// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/easystock-backend/internal/infrastructure/database/redis"
	"github.com/your-org/easystock-backend/internal/interfaces/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("🚀 Starting %s v%s (%s)", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Initialize database connection
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Health(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}
	log.Println("✅ Database connection established")

	// Initialize Redis connection
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	if err := redisClient.Health(); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}
	log.Println("✅ Redis connection established")

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.Printf("⚠️ Failed to create some indexes: %v", err)
	}

	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.Printf("⚠️ Failed to seed initial data: %v", err)
		}
		if err := migration.GetTableInfo(); err != nil {
			log.Printf("⚠️ Failed to get table info: %v", err)
		}
	}

	// Initialize HTTP server
	server := http.NewServer(cfg, db.GetDB(), redisClient)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited gracefully")
}
