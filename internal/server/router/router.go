package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/server/handlers"
	"github.com/mamadbah2/farmledger/internal/server/middleware"
)

// Handlers groups the HTTP adapters mounted under /api.
type Handlers struct {
	Records    *handlers.RecordHandler
	Indicators *handlers.IndicatorHandler
	Categories *handlers.CategoryHandler
	Settings   *handlers.SettingsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, auth *middleware.Authenticator, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", auth.Require())

	api.GET("/records", h.Records.List)
	api.POST("/records", h.Records.Create)
	api.GET("/records/:id", h.Records.Get)
	api.PUT("/records/:id", h.Records.Update)
	api.DELETE("/records/:id", h.Records.Delete)
	api.GET("/expenses", h.Records.Expenses)

	api.GET("/indicators", h.Indicators.Get)
	api.GET("/indicators/export", h.Indicators.Export)

	api.GET("/categories", h.Categories.List)
	api.POST("/categories", h.Categories.Create)
	api.PUT("/categories/:id", h.Categories.Update)
	api.PATCH("/categories/:id", h.Categories.Toggle)

	api.GET("/settings", h.Settings.Get)
	api.POST("/settings", h.Settings.Create)
	api.PUT("/settings", h.Settings.Update)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
