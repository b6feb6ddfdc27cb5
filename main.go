package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hospital-hmis-server/internal/config"
	"hospital-hmis-server/internal/logger"
	"hospital-hmis-server/internal/models"
	"hospital-hmis-server/internal/notify"
	"hospital-hmis-server/internal/routes"
	"hospital-hmis-server/internal/scheduler"
)

func main() {
	// Load environment variables; a missing .env is fine in production.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	appLog := logger.New(cfg.LogLevel)

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		appLog.WithComponent("db").Fatalf("Error connecting to database: %v", err)
	}

	// Process lifecycle: background work stops when the process is signalled.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notify.NewDispatcher(cfg.Notify, appLog)
	sched := scheduler.New(scheduler.NewStore(db), dispatcher, appLog, cfg.ReminderInterval)
	sched.Start(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, ctx, db, cfg, dispatcher, sched, appLog)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	appLog.WithComponent("http").Infof("server running on port %s", cfg.Port)
	if err := router.Run(serverAddr); err != nil {
		appLog.WithComponent("http").Fatalf("Failed to start server: %v", err)
	}
}
