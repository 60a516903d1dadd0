// cmd/notifier/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"marketplace-notify/internal/common/aws"
	"marketplace-notify/internal/common/config"
	"marketplace-notify/internal/common/database"
	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/observability"
	"marketplace-notify/internal/intake"
	"marketplace-notify/internal/notify"
	"marketplace-notify/internal/store/auditlog"
	"marketplace-notify/internal/store/catalog"
	"marketplace-notify/internal/store/gate"
	"marketplace-notify/internal/store/inapp"
	"marketplace-notify/internal/store/subscriptions"
	"marketplace-notify/internal/transport/mail"
	"marketplace-notify/internal/transport/realtime"
	"marketplace-notify/internal/transport/webpush"
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
			delay *= 2 // Exponential backoff
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

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notifier...",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("notifier")
	defer obs.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
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
		// Test the connection with context
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Stores ---
	catalogStore := catalog.New(pg.DB)
	subStore := subscriptions.New(pg.DB)
	gateStore := gate.New(rdb.Client)
	inappStore := inapp.New(rdb.Client)
	auditStore := auditlog.New(pg.DB, log)

	// --- Init Elasticsearch (optional audit mirror) with retry ---
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			// Test the connection
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		auditStore = auditStore.WithSearchIndex(esClient.Client, cfg.Database.Elasticsearch.AuditIndex)
		zapLog.Info("Elasticsearch connected successfully",
			zap.String("auditIndex", cfg.Database.Elasticsearch.AuditIndex),
		)
	}

	// --- Init Channel Transports ---
	sesClient, err := aws.NewSESClient(ctx, cfg.Mail.AWSRegion)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	mailTransport := mail.NewTransport(sesClient, cfg.Mail.FromEmail, log)

	var broadcaster notify.Broadcaster
	switch cfg.Realtime.Provider {
	case "sns":
		snsClient, err := aws.NewSNSClient(ctx, cfg.Realtime.AWSRegion)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		broadcaster = realtime.NewSNSBroadcaster(snsClient, cfg.Realtime.TopicARN)
	default:
		broadcaster = realtime.NewRedisBroadcaster(rdb.Client)
	}
	zapLog.Info("Realtime broadcaster initialized", zap.String("provider", cfg.Realtime.Provider))

	pushTransport := webpush.NewTransport(time.Duration(cfg.Push.TimeoutMS) * time.Millisecond)
	pushClient := notify.NewPushDeliveryClient(subStore, pushTransport, log)

	// --- Init Dispatcher ---
	senders := notify.Senders{
		Email: notify.NewEmailSender(mailTransport, log),
		Toast: notify.NewToastSender(broadcaster, log),
		Push:  notify.NewPushSender(pushClient, cfg.Push.DefaultIcon, log),
		InApp: notify.NewInAppSender(inappStore, log),
	}
	dispatcher := notify.NewDispatcher(catalogStore, gateStore, senders, auditStore, obs, log)
	zapLog.Info("Dispatcher initialized")

	// --- Init Kafka Intake ---
	intakeDone := make(chan error, 1)
	if cfg.Intake.Enabled {
		consumer := intake.NewConsumer(cfg.Intake.Brokers, cfg.Intake.GroupID, cfg.Intake.Topic, dispatcher, log)
		go func() {
			intakeDone <- consumer.Run(ctx)
		}()
		zapLog.Info("Kafka intake consumer started",
			zap.String("topic", cfg.Intake.Topic),
			zap.String("groupID", cfg.Intake.GroupID),
		)
	}

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received, stopping...")
	case err := <-intakeDone:
		if err != nil {
			zapLog.Error("Intake consumer stopped", zap.Error(err))
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	_ = shutdownCtx

	zapLog.Info("Notifier stopped gracefully")
}
