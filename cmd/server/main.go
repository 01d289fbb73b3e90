package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"callscreen/internal/api"
	"callscreen/internal/app"
	"callscreen/internal/config"
	"callscreen/internal/db"
	"callscreen/internal/logging"
	"callscreen/internal/repository"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load(nil)
	if err != nil {
		logging.New(os.Stderr, "info").Fatal("failed to load configuration", "err", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	p, providerName, err := app.NewPipeline(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build pipeline", "err", err)
	}

	// Initialize database if DATABASE_URL is provided
	var repo repository.ScreeningRepository
	if cfg.DatabaseURL != "" {
		logger.Info("initializing database connection")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			logger.Warn("failed to initialize database, continuing without database", "err", err)
		} else {
			defer conn.Close()
			repo = repository.NewPostgresRepository(conn)
		}
	} else {
		logger.Info("DATABASE_URL not set, running without database (in-memory storage only)")
	}

	srv := api.NewServer(p, repo, api.Options{
		Provider:    providerName,
		DefaultTier: cfg.DefaultTier,
		MaxUploadMB: cfg.MaxUploadMB,
	}, logger)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20

	// Add CORS middleware for browser clients
	r.Use(corsMiddleware())

	// Register routes
	srv.RegisterRoutes(r)

	logger.Info("callscreen running", "port", cfg.Port, "provider", providerName, "default_model", cfg.DefaultTier)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", "err", err)
	}
}

// corsMiddleware adds CORS headers for the upload page
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
