package http

import (
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/saker-ai/classroom-avatar/internal/behavior"
	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
	"github.com/saker-ai/classroom-avatar/internal/metrics"
	"github.com/saker-ai/classroom-avatar/internal/model"
	"github.com/saker-ai/classroom-avatar/internal/ws"
	"github.com/saker-ai/classroom-avatar/webassets"
)

// NewRouter builds the HTTP surface: health, metrics, clip catalog, the client
// websocket, model files and the browser frontend.
func NewRouter(cfg appconfig.Config, wsHandler *ws.Handler, models *model.Registry, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": wsHandler.SessionCount()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/clips", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"models":    models.All(),
			"character": cfg.CharacterConfig.ModelFile,
			"clips":     cfg.CharacterConfig.Clips,
		})
	})
	api.GET("/commands", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"commands": behavior.Rules()})
	})

	router.GET("/client-ws", func(c *gin.Context) {
		wsHandler.Handle(c.Writer, c.Request)
	})

	if info, err := os.Stat(cfg.ModelsDir); err == nil && info.IsDir() {
		router.Static("/models", cfg.ModelsDir)
		if logger != nil {
			logger.Info("serving disk assets", zap.String("route", "/models"), zap.String("source", cfg.ModelsDir))
		}
	} else if logger != nil {
		logger.Warn("models directory missing", zap.String("path", cfg.ModelsDir))
	}

	if !mountEmbeddedFrontend(router, logger) {
		router.Static("/frontend", cfg.FrontendDir)
		router.GET("/", func(c *gin.Context) {
			c.File(cfg.FrontendDir + "/index.html")
		})
	}

	return router
}

func mountEmbeddedFrontend(router *gin.Engine, logger *zap.Logger) bool {
	embeddedRoot, err := webassets.Subdir("classroom")
	if err != nil {
		if logger != nil {
			logger.Warn("failed to load embedded frontend assets; falling back to disk", zap.Error(err))
		}
		return false
	}
	indexHTML, err := fs.ReadFile(embeddedRoot, "index.html")
	if err != nil {
		if logger != nil {
			logger.Warn("missing embedded index.html; falling back to disk", zap.Error(err))
		}
		return false
	}
	if logger != nil {
		logger.Info("serving embedded frontend assets", zap.String("source", "webassets/classroom"))
	}

	router.StaticFS("/frontend", http.FS(embeddedRoot))
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	return true
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()

		if logger == nil {
			return
		}
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", latency),
			zap.String("user_agent", c.Request.UserAgent()),
		)
	}
}
