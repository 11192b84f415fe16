// cmd/worker-manager/main.go
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

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"career-recommender-workers/internal/catalog"
	"career-recommender-workers/internal/common/camunda"
	"career-recommender-workers/internal/common/config"
	"career-recommender-workers/internal/common/database"
	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/common/observability"
	"career-recommender-workers/internal/ml"

	// Recommendation Workers (5)
	cs "career-recommender-workers/internal/workers/recommendation/classify-strengths"
	mer "career-recommender-workers/internal/workers/recommendation/ml-enhance-recommendations"
	pr "career-recommender-workers/internal/workers/recommendation/persist-recommendation"
	scm "career-recommender-workers/internal/workers/recommendation/score-career-matches"
	ver "career-recommender-workers/internal/workers/recommendation/validate-exam-results"

	// Infrastructure Workers (1)
	brr "career-recommender-workers/internal/workers/infrastructure/build-recommendation-response"

	// Data Access Workers (1)
	sc "career-recommender-workers/internal/workers/data-access/search-careers"

	// Communication Workers (1)
	sre "career-recommender-workers/internal/workers/communication/send-recommendation-email"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

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

	// --- Init Elasticsearch with retry ---
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
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared Services ---
	catalogTTL := time.Duration(cfg.Recommendation.CatalogCacheTTL) * time.Second
	careerStore := catalog.NewStore(pg.DB, redis.Client, catalogTTL, log)

	// The enhancer degrades to a pass-through when the ML service is disabled.
	var enhancer ml.Enhancer = ml.NoopEnhancer{}
	if cfg.ML.Enabled {
		enhancer = ml.NewClient(
			cfg.ML.BaseURL,
			time.Duration(cfg.ML.Timeout)*time.Millisecond,
			log,
			ml.WithHealthPath(cfg.ML.HealthPath),
		)
		if err := enhancer.HealthCheck(ctx); err != nil {
			zapLog.Warn("ML service not reachable at startup, continuing with fallback on failures", zap.Error(err))
		}
	}

	zapLog.Info("All shared services initialized")

	// --- START: Register ALL 8 Workers ---

	// --- 1. Recommendation Workers (5) ---
	if cfg.Workers[ver.TaskType].Enabled {
		handler := ver.NewHandler(
			&ver.Config{
				Timeout:     time.Duration(cfg.Workers[ver.TaskType].Timeout) * time.Millisecond,
				MinSubjects: cfg.Recommendation.MinSubjects,
			},
			log,
		)
		startWorker(zeebeClient, ver.TaskType, cfg.Workers[ver.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[cs.TaskType].Enabled {
		handler := cs.NewHandler(
			&cs.Config{
				Timeout:  time.Duration(cfg.Workers[cs.TaskType].Timeout) * time.Millisecond,
				TopCount: 3,
			},
			log,
		)
		startWorker(zeebeClient, cs.TaskType, cfg.Workers[cs.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[scm.TaskType].Enabled {
		handler := scm.NewHandler(
			&scm.Config{
				Timeout:       time.Duration(cfg.Workers[scm.TaskType].Timeout) * time.Millisecond,
				MinMatchScore: cfg.Recommendation.MinMatchScore,
				CacheTTL:      catalogTTL,
			},
			careerStore, log,
		)
		startWorker(zeebeClient, scm.TaskType, cfg.Workers[scm.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[mer.TaskType].Enabled {
		handler := mer.NewHandler(
			&mer.Config{
				Timeout:    time.Duration(cfg.Workers[mer.TaskType].Timeout) * time.Millisecond,
				Candidates: cfg.Recommendation.MLCandidates,
			},
			enhancer, log,
		)
		startWorker(zeebeClient, mer.TaskType, cfg.Workers[mer.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[pr.TaskType].Enabled {
		handler := pr.NewHandler(
			&pr.Config{
				Timeout:            time.Duration(cfg.Workers[pr.TaskType].Timeout) * time.Millisecond,
				MaxRecommendations: cfg.Recommendation.MaxRecommendations,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, pr.TaskType, cfg.Workers[pr.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Infrastructure Workers (1) ---
	if cfg.Workers[brr.TaskType].Enabled {
		handler := brr.NewHandler(
			&brr.Config{
				TemplateRegistry: cfg.Template.RegistryPath,
				TemplateID:       "recommendation-response",
				CacheTTL:         5 * time.Minute,
				AppVersion:       cfg.App.Version,
				Timeout:          time.Duration(cfg.Workers[brr.TaskType].Timeout) * time.Millisecond,
			},
			careerStore, log,
		)
		startWorker(zeebeClient, brr.TaskType, cfg.Workers[brr.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Data Access Workers (1) ---
	if cfg.Workers[sc.TaskType].Enabled {
		handler := sc.NewHandler(
			&sc.Config{
				Timeout:   time.Duration(cfg.Workers[sc.TaskType].Timeout) * time.Millisecond,
				IndexName: cfg.Recommendation.CareerIndex,
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, sc.TaskType, cfg.Workers[sc.TaskType], handler.Handle, zapLog)
	}

	// --- 4. Communication Workers (1) ---
	if cfg.Workers[sre.TaskType].Enabled {
		handler, err := sre.NewHandler(
			&sre.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				TopCareers:   cfg.Notifications.Email.TopN,
				Timeout:      time.Duration(cfg.Workers[sre.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, careerStore, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-recommendation-email handler", zap.Error(err))
		}
		startWorker(zeebeClient, sre.TaskType, cfg.Workers[sre.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 8 workers registered successfully")

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
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
					"time":   time.Now().Format(time.RFC3339),
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
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range activeWorkers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

var activeWorkers []*camunda.CamundaWorker

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	w := camunda.NewWorker(
		client,
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handlerFunc,
		log,
	)
	activeWorkers = append(activeWorkers, w)
}
