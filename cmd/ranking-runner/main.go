// cmd/ranking-runner/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"feedback-ranking/internal/common/config"
	"feedback-ranking/internal/common/database"
	"feedback-ranking/internal/common/logger"
	"feedback-ranking/internal/common/observability"
	"feedback-ranking/internal/engine"
	"feedback-ranking/internal/ranking"
	"feedback-ranking/internal/sentiment"
	"feedback-ranking/internal/signals"
	"feedback-ranking/internal/snapshot"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting ranking runner...")

	obs := observability.New("ranking-runner")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Metrics + pprof endpoint ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
		zapLog.Info("metrics endpoint listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := http.ListenAndServe(cfg.App.MetricsAddr, mux); err != nil {
			zapLog.Error("metrics endpoint failed", zap.Error(err))
		}
	}()

	// --- Snapshot store ---
	var store snapshot.Store
	switch cfg.Ranking.SnapshotBackend {
	case "postgres":
		pgStore := snapshot.NewPostgresStore(pg.DB, log)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("snapshot schema setup failed", zap.Error(err))
		}
		store = pgStore
	default:
		store = snapshot.NewRedisStore(rdb.Client, log)
	}

	classifier := sentiment.NewClient(sentiment.ClientConfig{
		BaseURL:    cfg.Sentiment.BaseURL,
		APIKey:     cfg.Sentiment.APIKey,
		Timeout:    config.GetDuration(cfg.Sentiment.Timeout),
		MaxRetries: cfg.Sentiment.MaxRetries,
	}, log)

	rankingCfg := ranking.DefaultConfig()
	rankingCfg.TopN = cfg.Ranking.TopN
	rankingCfg.MinTotalResponses = cfg.Ranking.MinTotalResponses
	rankingCfg.MinRecentResponses = cfg.Ranking.MinRecentResponses
	rankingCfg.ClassifierConcurrency = cfg.Sentiment.MaxConcurrent
	rankingCfg.Weights = ranking.Weights{
		NPS:        cfg.Ranking.Weights.NPS,
		Sentiment:  cfg.Ranking.Weights.Sentiment,
		Engagement: cfg.Ranking.Weights.Engagement,
		Volume:     cfg.Ranking.Weights.Volume,
		Recency:    cfg.Ranking.Weights.Recency,
		Trend:      cfg.Ranking.Weights.Trend,
	}

	eng, err := engine.New(engine.Options{
		Config:             rankingCfg,
		ProductConcurrency: cfg.Ranking.ProductConcurrency,
		Source:             signals.NewPostgresSource(pg.DB, log),
		Store:              store,
		Classifier:         classifier,
		Observability:      obs,
		Logger:             log,
	})
	if err != nil {
		zapLog.Fatal("engine setup failed", zap.Error(err))
	}

	summary, runErr := eng.Run(ctx)
	if summary != nil {
		if out, err := json.MarshalIndent(summary, "", "  "); err == nil {
			fmt.Println(string(out))
		}
	}
	if runErr != nil {
		zapLog.Error("ranking run finished with failures", zap.Error(runErr))
		os.Exit(1)
	}

	zapLog.Info("ranking run completed successfully")
}
