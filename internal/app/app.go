// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/nbenali/campusbot-go/internal/bot"
	"github.com/nbenali/campusbot-go/internal/buildinfo"
	"github.com/nbenali/campusbot-go/internal/config"
	"github.com/nbenali/campusbot-go/internal/ctxutil"
	"github.com/nbenali/campusbot-go/internal/dialogue"
	"github.com/nbenali/campusbot-go/internal/directory"
	"github.com/nbenali/campusbot-go/internal/faq"
	"github.com/nbenali/campusbot-go/internal/genai"
	"github.com/nbenali/campusbot-go/internal/knowledge"
	"github.com/nbenali/campusbot-go/internal/logger"
	"github.com/nbenali/campusbot-go/internal/metrics"
	"github.com/nbenali/campusbot-go/internal/ratelimit"
	"github.com/nbenali/campusbot-go/internal/selection"
	"github.com/nbenali/campusbot-go/internal/sentry"
	"github.com/nbenali/campusbot-go/internal/session"
	"github.com/nbenali/campusbot-go/internal/telegram"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// knowledgeRefreshInterval is how often the search index is rebuilt
// from the snippet store to pick up externally inserted content.
const knowledgeRefreshInterval = 1 * time.Hour

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg       *config.Config
	logger    *logger.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	directory *directory.Store
	knowledge *knowledge.Service
	sessions  *session.Store
	limiter   *ratelimit.UserLimiter
	responder genai.Responder
	adapter   *telegram.Adapter
	server    *http.Server
	wg        sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.New(cfg.LogLevel)
	log = log.WithField("service", "campusbot-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger to enable context value extraction (userID,
	// chatID, requestID) in package-level slog.*Context() calls.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
		Release:     buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Error tracking initialization failed")
	} else if cfg.SentryToken != "" {
		log.WithField("host", cfg.SentryHost).Info("Error tracking enabled")
	}

	dirStore, err := directory.NewStore(cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("directory store: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	if err := seedIfEmpty(ctx, dirStore, log); err != nil {
		return nil, fmt.Errorf("directory seed: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	knowStore, err := knowledge.NewStore(cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("knowledge store: %w", err)
	}
	knowSvc := knowledge.NewService(knowStore, dirStore, log)
	if err := seedKnowledgeIfEmpty(ctx, knowStore, dirStore, log); err != nil {
		return nil, fmt.Errorf("knowledge seed: %w", err)
	}
	if err := knowSvc.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial knowledge index build failed")
	}

	faqSvc, err := faq.NewService()
	if err != nil {
		return nil, fmt.Errorf("faq catalog: %w", err)
	}

	var responder genai.Responder
	if cfg.HasLLMProvider() {
		responder, err = genai.NewResponder(ctx, buildChatConfig(cfg), m)
		if err != nil {
			log.WithError(err).Warn("Responder initialization failed")
		}
		if responder != nil {
			log.WithField("provider", string(responder.Provider())).
				WithField("model", responder.Model()).
				Info("Generative replies enabled")
		}
	} else {
		log.Info("No LLM provider configured, serving FAQ answers only")
	}

	limiter := ratelimit.NewUserLimiter(
		cfg.Dialogue.UserRateLimitBurst,
		cfg.Dialogue.UserRateLimitRefillPerSec,
		config.RateLimiterCleanupInterval,
		m,
	)

	sessions := session.NewStore(cfg.Dialogue.HistoryCap)
	sessions.OnUpdate(m.SetActiveSessions)

	orchestrator := dialogue.New(cfg.Dialogue, faqSvc, knowSvc, responder, dirStore, sessions, limiter, m, log)
	machine := selection.NewMachine(dirStore, sessions)
	processor := bot.NewProcessor(machine, orchestrator, dirStore, sessions, m, log)

	adapter, err := telegram.New(cfg.TelegramBotToken, processor, log)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))

	app := &Application{
		cfg:       cfg,
		logger:    log,
		registry:  registry,
		metrics:   m,
		directory: dirStore,
		knowledge: knowSvc,
		sessions:  sessions,
		limiter:   limiter,
		responder: responder,
		adapter:   adapter,
	}

	router.GET("/", app.redirectToGitHub)
	router.GET("/healthz", app.livenessCheck)
	router.HEAD("/healthz", app.livenessCheck)
	router.GET("/readyz", app.readinessCheck)
	router.HEAD("/readyz", app.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("Initialization complete")
	return app, nil
}

// seedIfEmpty loads the starter catalog when the directory has no
// active institutions, so a fresh deployment is immediately usable.
func seedIfEmpty(ctx context.Context, store *directory.Store, log *logger.Logger) error {
	count, err := store.CountInstitutions(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.WithField("institutions", count).Debug("Directory already populated")
		return nil
	}

	start := time.Now()
	if err := store.SeedDefaults(ctx); err != nil {
		return err
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Seeded default institution catalog")
	return nil
}

// seedKnowledgeIfEmpty loads starter snippets for every seeded
// institution when the snippet store is empty.
func seedKnowledgeIfEmpty(ctx context.Context, store *knowledge.Store, dir *directory.Store, log *logger.Logger) error {
	count, err := store.CountSnippets(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.WithField("snippets", count).Debug("Knowledge store already populated")
		return nil
	}

	institutions, err := dir.Institutions(ctx)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(institutions))
	for _, inst := range institutions {
		ids = append(ids, inst.ID)
	}

	if err := store.SeedDefaults(ctx, ids); err != nil {
		return err
	}
	log.WithField("institutions", len(ids)).Info("Seeded default knowledge snippets")
	return nil
}

// buildChatConfig creates a ChatConfig from the application config.
func buildChatConfig(cfg *config.Config) genai.ChatConfig {
	chatCfg := genai.ChatConfig{
		Gemini: genai.ProviderConfig{APIKey: cfg.GeminiAPIKey, Models: cfg.GeminiChatModels},
		Groq:   genai.ProviderConfig{APIKey: cfg.GroqAPIKey, Models: cfg.GroqChatModels},
		Retry:  genai.DefaultRetryConfig(),
	}

	if len(cfg.LLMProviders) > 0 {
		providers := make([]genai.Provider, 0, len(cfg.LLMProviders))
		for _, p := range cfg.LLMProviders {
			switch p {
			case "gemini":
				providers = append(providers, genai.ProviderGemini)
			case "groq":
				providers = append(providers, genai.ProviderGroq)
			default:
				slog.Warn("ignoring unknown provider", "name", p)
			}
		}
		chatCfg.Providers = providers
	}

	return chatCfg
}

func (a *Application) redirectToGitHub(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, "https://github.com/nbenali/campusbot-go")
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	institutions, err := a.directory.CountInstitutions(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	snippets, _ := a.knowledge.Count(ctx)

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"catalog": gin.H{
			"institutions": institutions,
			"snippets":     snippets,
		},
		"features": a.getFeatures(),
	})
}

func (a *Application) getFeatures() map[string]bool {
	return map[string]bool{
		"generative_replies": a.responder != nil,
		"knowledge_search":   a.knowledge != nil,
	}
}

// Run starts the Telegram long-polling loop, the HTTP server and
// background jobs, then blocks until a shutdown signal arrives.
//
// Graceful shutdown sequence:
//  1. Receive shutdown signal (SIGINT/SIGTERM)
//  2. Cancel context so the polling loop and background jobs stop
//  3. Wait for background goroutines to complete
//  4. Close resources (HTTP server, responder, stores, rate limiter)
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.logger.Info("Starting Telegram polling")
		a.adapter.Start(ctx)
		a.logger.Info("Telegram polling stopped")
	})
	a.wg.Go(func() {
		a.refreshKnowledge(ctx)
	})
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown performs graceful shutdown of the HTTP server and resources.
// Must be called after background goroutines have stopped.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")

	if a.responder != nil {
		if err := a.responder.Close(); err != nil {
			a.logger.WithError(err).WithField("component", "responder").Error("Component close error")
		}
	}

	if err := a.knowledge.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "knowledge").Error("Component close error")
	}

	if err := a.directory.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "directory").Error("Component close error")
	}

	if a.limiter != nil {
		a.limiter.Stop()
	}

	sentry.Flush(2 * time.Second)

	a.logger.Info("Shutdown complete")
	return nil
}

// refreshKnowledge rebuilds the search index periodically so snippets
// inserted by operators outside the process become searchable.
func (a *Application) refreshKnowledge(ctx context.Context) {
	a.logger.Debug("Knowledge refresh job started")
	defer a.logger.Debug("Knowledge refresh job stopped")

	ticker := time.NewTicker(knowledgeRefreshInterval)
	defer ticker.Stop()

	a.recordKnowledgeSize(ctx)

	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Knowledge refresh received shutdown signal")
			return
		case <-ticker.C:
			start := time.Now()
			if err := a.knowledge.Refresh(ctx); err != nil {
				a.logger.WithError(err).Error("Knowledge index refresh failed")
				continue
			}
			a.metrics.RecordJob("knowledge_refresh", time.Since(start).Seconds())
			a.recordKnowledgeSize(ctx)
		}
	}
}

func (a *Application) recordKnowledgeSize(ctx context.Context) {
	count, err := a.knowledge.Count(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to count snippets for metrics")
		return
	}
	a.metrics.SetKnowledgeSnippets(count)
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, everything else=Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = c.GetHeader("X-Request-ID")
		}
		if requestID != "" {
			ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("client_ip", c.ClientIP())

		if requestID != "" {
			entry = entry.WithRequestID(requestID)
		}

		switch {
		case status >= 500:
			entry.Error("HTTP request failed")
		case status >= 400 && status != 404:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}
