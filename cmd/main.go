package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/m-abdelwahab/email-agent-workshop/internal/api"
	"github.com/m-abdelwahab/email-agent-workshop/internal/cli"
	"github.com/m-abdelwahab/email-agent-workshop/internal/config"
	"github.com/m-abdelwahab/email-agent-workshop/internal/database"
	"github.com/m-abdelwahab/email-agent-workshop/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Check if running CLI command
	if len(os.Args) > 1 {
		cli.Execute(db, cfg)
		return
	}

	// The server needs complete webhook credentials; the CLI above must keep
	// working without them so the secret/credentials commands can create them.
	if err := cfg.Validate(); err != nil {
		zapLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Start API server
	router, err := api.SetupRouter(db, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to setup router", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting email agent server",
		zap.String("addr", addr),
		zap.String("database", cfg.Database.Type),
		zap.String("auth_mode", cfg.Webhook.AuthMode),
		zap.String("ai_provider", cfg.AI.Provider))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
