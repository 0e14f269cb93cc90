// Package main is the entry point of the enrollment hub service.
//
// The service owns the enrollment lifecycle: payment collection, activation,
// lesson progress tracking, automatic completion and certificate issuance.
// The bounded contexts talk to each other only through domain events on an
// in-process event bus.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/learnhub/enrollment-hub/config"
	"github.com/learnhub/enrollment-hub/internal/application/command"
	"github.com/learnhub/enrollment-hub/internal/application/eventhandler"
	"github.com/learnhub/enrollment-hub/internal/application/query"
	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/cache"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/content"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/gateway"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/messaging"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/persistence/postgres"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/persistence/redis"
	"github.com/learnhub/enrollment-hub/pkg/clock"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	slog.SetDefault(log)
	log.Info("starting enrollment hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.MigrateOnStart {
		log.Info("checking database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. COURSE PROJECTION CACHE (Redis or in-process)
	// ─────────────────────────────────────────────────────────────────────────
	var courseCache course.InfoCache

	if cfg.Redis.Disabled {
		log.Info("redis disabled, using in-process course cache")
		courseCache = cache.NewCourseInfoCache(cache.CourseInfoCacheConfig{
			TTL:    cfg.Cache.CourseTTL,
			Clock:  clock.NewSystem(),
			Logger: log,
		})
	} else {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer func() {
			log.Info("closing Redis connection...")
			_ = redisCache.Close()
		}()

		courseCache = redis.NewCourseInfoCache(redisCache)
		log.Info("Redis connection established")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	enrollmentRepo := postgres.NewEnrollmentRepository(dbConn)
	paymentRepo := postgres.NewPaymentRepository(dbConn)
	learningRepo := postgres.NewLearningRepository(dbConn)
	certificateRepo := postgres.NewCertificateRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		Logger:        log,
		EnableMetrics: true,
	})
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. COURSE CATALOGUE AND CACHED QUERY
	// ─────────────────────────────────────────────────────────────────────────
	// The catalogue stands in for the Content store's read side. It answers
	// course queries and publishes Course* events on changes.
	catalogue := content.NewCatalogue(eventBus)
	courseQuery := cache.NewCachedQuery(courseCache, catalogue, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. PAYMENT GATEWAY
	// ─────────────────────────────────────────────────────────────────────────
	var paymentGateway payment.Gateway
	if cfg.Gateway.BaseURL == "" {
		log.Warn("no payment gateway configured, using simulator")
		paymentGateway = gateway.NewSimulator()
	} else {
		gatewayCfg := gateway.DefaultClientConfig(cfg.Gateway.BaseURL)
		gatewayCfg.APIKey = cfg.Gateway.APIKey
		gatewayCfg.Timeout = cfg.Gateway.RequestTimeout
		gatewayCfg.Logger = log
		paymentGateway = gateway.NewClient(gatewayCfg)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. EVENT HANDLERS (choreography wiring)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("subscribing event handlers...")

	onConfirmed := eventhandler.NewOnPaymentConfirmedHandler(enrollmentRepo, eventBus, log)
	if err := eventBus.SubscribeNamed(onConfirmed.EventType(), "on_payment_confirmed", onConfirmed.Handle); err != nil {
		return fmt.Errorf("failed to subscribe payment confirmed handler: %w", err)
	}

	onRejected := eventhandler.NewOnPaymentRejectedHandler(enrollmentRepo, log)
	if err := eventBus.SubscribeNamed(onRejected.EventType(), "on_payment_rejected", onRejected.Handle); err != nil {
		return fmt.Errorf("failed to subscribe payment rejected handler: %w", err)
	}

	onCourseChanged := eventhandler.NewOnCourseChangedHandler(courseCache, log)
	for _, eventType := range onCourseChanged.EventTypes() {
		if err := eventBus.SubscribeNamed(eventType, "on_course_changed", onCourseChanged.Handle); err != nil {
			return fmt.Errorf("failed to subscribe course change handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. COMMAND AND QUERY HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application handlers...")

	refundHandler := command.NewRefundPaymentHandler(paymentRepo, paymentGateway, eventBus)

	app := &application{
		Enroll:             command.NewEnrollHandler(enrollmentRepo, courseQuery, eventBus),
		ProcessPayment:     command.NewProcessPaymentHandler(paymentRepo, enrollmentRepo, paymentGateway, eventBus),
		RefundPayment:      refundHandler,
		RecordLesson:       command.NewRecordLessonCompletionHandler(learningRepo, enrollmentRepo, courseQuery, eventBus, log),
		UncompleteLesson:   command.NewUncompleteLessonHandler(learningRepo),
		CompleteCourse:     command.NewCompleteCourseHandler(enrollmentRepo, learningRepo, eventBus),
		IssueCertificate:   command.NewIssueCertificateHandler(certificateRepo, enrollmentRepo, courseQuery, eventBus),
		AmendCertificate:   command.NewAmendCertificateHandler(certificateRepo),
		CancelEnrollment:   command.NewCancelEnrollmentHandler(enrollmentRepo, paymentRepo, refundHandler, eventBus),
		StudentEnrollments: query.NewGetStudentEnrollmentsHandler(enrollmentRepo, courseQuery),
		CourseProgress:     query.NewGetCourseProgressHandler(learningRepo, courseQuery),
		Certificate:        query.NewGetCertificateHandler(certificateRepo),
		Catalogue:          catalogue,
	}
	_ = app // consumed by the transport layer, which is wired separately

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("enrollment hub is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	if metrics := eventBus.Metrics(); metrics != nil {
		snapshot := metrics.Snapshot()
		log.Info("event bus totals",
			"published", snapshot.TotalPublished,
			"handler_execs", snapshot.TotalHandlerExecs,
			"success_rate", snapshot.HandlerSuccessRate,
		)
	}

	log.Info("enrollment hub stopped")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION HANDLE
// ══════════════════════════════════════════════════════════════════════════════

// application bundles every use case the transport layer exposes.
type application struct {
	Enroll           *command.EnrollHandler
	ProcessPayment   *command.ProcessPaymentHandler
	RefundPayment    *command.RefundPaymentHandler
	RecordLesson     *command.RecordLessonCompletionHandler
	UncompleteLesson *command.UncompleteLessonHandler
	CompleteCourse   *command.CompleteCourseHandler
	IssueCertificate *command.IssueCertificateHandler
	AmendCertificate *command.AmendCertificateHandler
	CancelEnrollment *command.CancelEnrollmentHandler

	StudentEnrollments *query.GetStudentEnrollmentsHandler
	CourseProgress     *query.GetCourseProgressHandler
	Certificate        *query.GetCertificateHandler

	Catalogue *content.Catalogue
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger builds the structured logger from the observability config.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Observability.LogFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(
		"service", cfg.App.Name,
		"env", string(cfg.App.Environment),
	)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var _ shared.EventBus = (*messaging.InMemoryEventBus)(nil)
