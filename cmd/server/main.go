// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/accounts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/ai"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/backoffice"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/catalog"
	commonauth "github.com/Antoniofe-cpu/tempus-concierge/internal/common/auth"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/aws"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/config"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/database"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/observability"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/drafts"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/flow"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/notify"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/server"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/sessions"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/submissions"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting tempus-concierge...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
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
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch; search degrades to Postgres if it never comes up ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Warn("elasticsearch unavailable, catalog search will use the database fallback", zap.Error(err))
		esClient = nil
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- External service clients ---
	keycloak := commonauth.NewKeycloakClient(
		cfg.Auth.Keycloak.URL,
		cfg.Auth.Keycloak.Realm,
		cfg.Auth.Keycloak.ClientID,
		cfg.Auth.Keycloak.ClientSecret,
	)

	var emailSender notify.EmailSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("SES client init failed, confirmation emails disabled", zap.Error(err))
		} else {
			emailSender = sesClient
		}
	}

	var alertPublisher notify.AlertPublisher
	if cfg.Notifications.OpsAlert.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("SNS client init failed, ops alerts disabled", zap.Error(err))
		} else {
			alertPublisher = snsClient
		}
	}

	var geminiClient *ai.Client
	if cfg.APIs.Gemini.APIKey != "" {
		geminiClient = ai.NewClient(ai.Options{
			BaseURL:    cfg.APIs.Gemini.BaseURL,
			APIKey:     cfg.APIs.Gemini.APIKey,
			Model:      cfg.APIs.Gemini.Model,
			Timeout:    time.Duration(cfg.APIs.Gemini.Timeout) * time.Millisecond,
			MaxRetries: cfg.APIs.Gemini.MaxRetries,
		}, log)
	} else {
		zapLog.Warn("no Gemini API key configured, AI content will use placeholders")
	}

	zapLog.Info("All external service clients initialized")

	// --- Assemble the application ---
	sessionStore := sessions.NewStore(redisClient.Client, config.SessionTTL(cfg), log)
	draftStore := drafts.NewRedisStore(redisClient.Client, config.DraftTTL(cfg), log)

	notifier := notify.NewNotifier(emailSender, alertPublisher, notify.Options{
		EmailEnabled: cfg.Notifications.Email.Enabled && emailSender != nil,
		FromEmail:    cfg.Notifications.Email.FromEmail,
		AlertEnabled: cfg.Notifications.OpsAlert.Enabled && alertPublisher != nil,
		TopicARN:     cfg.Integrations.AWS.SNS.TopicARN,
	}, log)

	catalogRepo := catalog.NewRepository(pg.DB)
	var searchClient *elasticsearch.Client
	if esClient != nil {
		searchClient = esClient.Client
	}
	searcher := catalog.NewSearcher(searchClient, cfg.Database.Elasticsearch.Index, catalogRepo, log)

	srv := server.New(cfg, server.Dependencies{
		Accounts: accounts.NewService(accounts.ServiceDependencies{
			Provider:    keycloak,
			Sessions:    sessionStore,
			AdminEmails: cfg.Auth.AdminEmails,
			Realm:       cfg.Auth.Keycloak.Realm,
			Logger:      log,
		}),
		Submissions: submissions.NewService(submissions.ServiceDependencies{
			Repository: submissions.NewPostgresRepository(pg.DB, log),
			Notifier:   notifier,
			Logger:     log,
		}),
		Coordinator:   flow.NewCoordinator(draftStore, log),
		Reconciler:    flow.NewReconciler(draftStore, log),
		Catalog:       catalogRepo,
		Search:        searcher,
		Backoffice:    backoffice.NewService(backoffice.NewRepository(pg.DB), log),
		Content:       ai.NewContentService(geminiClient, log),
		Observability: obs,
		Logger:        log,
	})

	// --- Run until interrupted ---
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		zapLog.Fatal("server stopped", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
