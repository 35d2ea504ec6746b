package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/heartrisk/internal/features"
	"github.com/Skufu/heartrisk/internal/inference"
	"github.com/Skufu/heartrisk/internal/logging"
	"github.com/Skufu/heartrisk/internal/web"
)

// Predictor scores an encoded vector. *inference.Adapter implements it.
type Predictor interface {
	Predict(vec features.Vector) (inference.Result, error)
}

func setupRouter(log *zap.Logger, db HealthChecker, predictor Predictor) *gin.Engine {
	router := gin.New()
	router.Use(
		logging.GinLogger(log),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
			MaxAge:       12 * time.Hour,
		}),
	)
	router.SetHTMLTemplate(web.Templates())

	h := &handler{log: log, predictor: predictor}

	router.GET("/", h.form)
	router.POST("/predict", h.predictForm)

	api := router.Group("/api")
	api.GET("/options", h.options)
	api.POST("/predict", h.predictJSON)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		body := gin.H{"status": "ok", "artifacts": "loaded"}
		if predictor == nil {
			body["status"] = "unavailable"
			body["artifacts"] = "missing"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		if db == nil {
			body["db"] = "disabled"
			c.JSON(http.StatusOK, body)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["db"] = fmt.Sprintf("unhealthy: %v", err)
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}

		body["db"] = "ok"
		c.JSON(http.StatusOK, body)
	})

	return router
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
