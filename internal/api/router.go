package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/m-abdelwahab/email-agent-workshop/internal/api/handlers"
	"github.com/m-abdelwahab/email-agent-workshop/internal/api/middleware"
	"github.com/m-abdelwahab/email-agent-workshop/internal/config"
	"github.com/m-abdelwahab/email-agent-workshop/internal/database/models"
	"github.com/m-abdelwahab/email-agent-workshop/internal/functions/ai"
	"github.com/m-abdelwahab/email-agent-workshop/internal/monitoring"
	"github.com/m-abdelwahab/email-agent-workshop/internal/services"
	"github.com/m-abdelwahab/email-agent-workshop/internal/web"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.SecretHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	verifier, err := middleware.NewVerifier(cfg.Webhook)
	if err != nil {
		return nil, err
	}

	// Initialize services
	metrics := monitoring.NewMetrics()
	logService := services.NewLogServiceWithLevel(db, cfg.Log.Level)
	messageService := services.NewMessageService(db)

	generator := ai.NewClient(cfg.AI.Timeout)
	generator.Configure(cfg.AI.Provider, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)

	ingestService := services.NewIngestService(generator, messageService, logService, metrics, logger)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(ingestService, logService, metrics, logger)
	messageHandler := handlers.NewMessageHandler(messageService, logger)

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", metrics.Handler())

	// Read-side UI
	router.GET("/", func(c *gin.Context) {
		page, err := web.IndexHTML()
		if err != nil {
			c.String(http.StatusInternalServerError, "Internal server error")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
	router.StaticFS("/static", web.StaticFS())

	apiGroup := router.Group("/api")
	{
		webhooks := apiGroup.Group("/webhooks")
		// Count rejected deliveries after the auth middleware has written 401
		webhooks.Use(func(c *gin.Context) {
			c.Next()
			if c.Writer.Status() == http.StatusUnauthorized {
				metrics.WebhookDeliveries.WithLabelValues(monitoring.OutcomeUnauthorized).Inc()
				_ = logService.LogIngestRejected(models.LogModuleAuth, "unauthorized delivery")
			}
		})
		webhooks.Use(middleware.WebhookAuthMiddleware(verifier))
		{
			webhooks.POST("/email", webhookHandler.Receive)
		}

		messages := apiGroup.Group("/messages")
		{
			messages.GET("", messageHandler.ListMessages)
			messages.GET("/:id", messageHandler.GetMessage)
		}
	}

	return router, nil
}
