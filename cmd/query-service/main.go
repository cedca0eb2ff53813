// cmd/query-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"well-query-engine/internal/backend"
	"well-query-engine/internal/classifier"
	"well-query-engine/internal/common/config"
	"well-query-engine/internal/common/database"
	"well-query-engine/internal/common/llm"
	"well-query-engine/internal/common/logger"
	"well-query-engine/internal/common/observability"
	"well-query-engine/internal/common/zoho"
	"well-query-engine/internal/engine"
	"well-query-engine/internal/roles"
	"well-query-engine/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff.
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
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting query service",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("query-service")
	defer obs.Shutdown()

	// --- Relational replica ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()

	err = retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pg.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "postgres connection")
	if err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	// --- CRM backend ---
	crmClient := zoho.NewClient(
		cfg.Integrations.Zoho.OAuthToken,
		cfg.Integrations.Zoho.BaseURL,
		config.GetDuration(cfg.Integrations.Zoho.Timeout),
	)

	// --- Model path (optional) ---
	llmClient := llm.NewClient(
		cfg.APIs.GenAI.BaseURL,
		cfg.APIs.GenAI.APIKey,
		cfg.APIs.GenAI.Model,
		config.GetDuration(cfg.APIs.GenAI.Timeout),
		cfg.APIs.GenAI.MaxRetries,
	)
	if !llmClient.Available() {
		zapLog.Info("no model credentials configured, running rule-based only")
	}

	// --- Engine wiring ---
	resolver := roles.NewResolver(cfg.Engine.ExecutiveAllowList)
	rules := classifier.NewRuleBasedClassifier(
		cfg.Engine.RuleConfidenceMatch,
		cfg.Engine.RuleConfidenceFallback,
	)
	ic := classifier.NewIntentClassifier(llmClient, rules, log)

	candidates := backend.NewCandidateStore(
		pg.GetDB(),
		cfg.Engine.MaxRows,
		config.GetDuration(cfg.Engine.QueryTimeout),
	)
	dispatcher := backend.NewDispatcher(candidates, crmClient, cfg.Engine.MaxRows, log)

	qe := engine.New(resolver, ic, dispatcher, log)

	// --- HTTP surface ---
	srv := server.New(qe, config.GetDuration(cfg.Server.RequestTimeout), obs, log)
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srv.Routes(),
	}

	go func() {
		zapLog.Info("http server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
}
