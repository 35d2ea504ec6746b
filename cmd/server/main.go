package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Skufu/heartrisk/internal/artifacts"
	"github.com/Skufu/heartrisk/internal/config"
	"github.com/Skufu/heartrisk/internal/inference"
	"github.com/Skufu/heartrisk/internal/logging"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger config comes from cfg, so fall back to a bare one.
		zap.NewExample().Fatal("config error", zap.Error(err))
	}
	gin.SetMode(cfg.GinMode)

	log, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: cfg.GinMode == gin.DebugMode,
	})
	if err != nil {
		zap.NewExample().Fatal("logger error", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	var (
		db   HealthChecker
		pool *pgxpool.Pool
	)
	if cfg.NeedsDB() {
		pool, err = artifacts.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()
		if cfg.EnableDB {
			db = pool
		}
	}

	adapter, err := loadAdapter(ctx, cfg, pool)
	if err != nil {
		log.Fatal("cannot serve predictions without artifacts", zap.Error(err))
	}
	summary := adapter.Summary()
	log.Info("artifacts loaded",
		zap.String("source", cfg.Artifacts.Source),
		zap.String("scaler", summary.Scaler),
		zap.String("classifier", summary.Classifier),
		zap.Float64("threshold", summary.Threshold),
		zap.Int("features", len(summary.FeatureNames)),
	)

	router := setupRouter(log, db, adapter)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	log.Info("server listening", zap.String("addr", server.Addr))
	waitForShutdown(log, server)
}

// loadAdapter reads both artifacts once, before the server accepts
// requests.
func loadAdapter(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (*inference.Adapter, error) {
	var db artifacts.Querier
	if pool != nil {
		db = pool
	}
	store, err := artifacts.NewStore(cfg.ArtifactSettings(), db)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return inference.LoadAdapter(loadCtx, store, inference.ArtifactNames{
		Scaler:     cfg.Artifacts.ScalerName,
		Classifier: cfg.Artifacts.ModelName,
	})
}

func waitForShutdown(log *zap.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
