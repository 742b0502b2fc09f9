package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/internal/cache"
	"github.com/getmentor/mentorship-api/internal/database/postgres"
	"github.com/getmentor/mentorship-api/internal/handlers"
	"github.com/getmentor/mentorship-api/internal/middleware"
	"github.com/getmentor/mentorship-api/internal/repository"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/getmentor/mentorship-api/pkg/db"
	"github.com/getmentor/mentorship-api/pkg/httpclient"
	"github.com/getmentor/mentorship-api/pkg/jwt"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/profiling"
	"github.com/getmentor/mentorship-api/pkg/storage"
	"github.com/getmentor/mentorship-api/pkg/tracing"
	"github.com/getmentor/mentorship-api/pkg/trigger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// stores bundles the selected persistence backends
type stores struct {
	engagements repository.EngagementStore
	requests    repository.RequestStore
	kv          cache.KeyValueStore
	checks      []handlers.HealthCheck
	closers     []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores builds the lifecycle store and key-value store selected by config
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:        cfg.Database.URL,
			MaxConns:   cfg.Database.MaxConns,
			MinConns:   cfg.Database.MinConns,
			CACertPath: cfg.Database.CACertPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database connection pool: %w", err)
		}
		s.closers = append(s.closers, func() { db.Close(pool) })
		s.checks = append(s.checks, handlers.HealthCheck{Name: "database", Check: pool.Ping})

		client := postgres.NewClient(pool)
		s.engagements = repository.NewPostgresEngagementStore(client)
		s.requests = repository.NewPostgresRequestStore(client)
		logger.Info("Using PostgreSQL engagement store")
	default:
		s.engagements = repository.NewMemoryEngagementStore()
		s.requests = repository.NewMemoryRequestStore()
		logger.Warn("Using in-memory engagement store; data is lost on restart")
	}

	switch cfg.KeyValue.Backend {
	case config.BackendRedis:
		redisCfg := cache.DefaultRedisConfig(cfg.Redis.Addr)
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.TTL = cfg.KeyValue.DefaultTTL

		kv, closeRedis, err := cache.NewRedisStore(redisCfg)
		if err != nil {
			s.close()
			return nil, err
		}
		s.kv = kv
		s.closers = append(s.closers, func() {
			if err := closeRedis(); err != nil {
				logger.Error("Failed to close redis client", zap.Error(err))
			}
		})
		s.checks = append(s.checks, handlers.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			_, _, err := kv.Get(ctx, "healthcheck")
			return err
		}})
	default:
		s.kv = cache.NewMemoryStore(cfg.KeyValue.DefaultTTL)
	}

	return s, nil
}

// newCertificateService wires the optional signer, archive and webhook
func newCertificateService(cfg *config.Config, httpClient httpclient.Client) (*services.CertificateService, error) {
	var signer *jwt.CertificateSigner
	if cfg.Certificates.SigningSecret != "" {
		signer = jwt.NewCertificateSigner(cfg.Certificates.SigningSecret, cfg.Certificates.Issuer)
	} else {
		logger.Warn("Certificate signing disabled: CERTIFICATE_SIGNING_SECRET not configured")
	}

	var archive services.CertificateArchive
	if cfg.Storage.Enabled() {
		client, err := storage.NewClient(storage.Config{
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			BucketName:      cfg.Storage.BucketName,
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage client: %w", err)
		}
		archive = client
	}

	issued := trigger.New("certificate_issued", cfg.Certificates.IssuedTriggerURL, httpClient)
	timeout := time.Duration(cfg.Certificates.PublishTimeoutSec) * time.Second

	return services.NewCertificateService(signer, archive, issued, timeout), nil
}

// registerAPIRoutes registers the versioned lifecycle routes
func registerAPIRoutes(
	group *gin.RouterGroup,
	readLimiter, writeLimiter *middleware.RateLimiter,
	requestHandler *handlers.RequestHandler,
	engagementHandler *handlers.EngagementHandler,
	certificateHandler *handlers.CertificateHandler,
	preferencesHandler *handlers.PreferencesHandler,
) {
	read := readLimiter.Middleware()
	write := writeLimiter.Middleware()
	body := middleware.BodySizeLimitMiddleware(middleware.DefaultBodyLimit)
	notesBody := middleware.BodySizeLimitMiddleware(middleware.NotesBodyLimit)

	requests := group.Group("/requests")
	requests.POST("", write, body, requestHandler.Submit)
	requests.GET("", read, requestHandler.List)
	requests.GET("/:id", read, requestHandler.Get)
	requests.POST("/:id/accept", write, body, requestHandler.Accept)
	requests.POST("/:id/reject", write, body, requestHandler.Reject)

	engagements := group.Group("/engagements")
	engagements.GET("", read, engagementHandler.List)
	engagements.GET("/:id", read, engagementHandler.Get)
	engagements.GET("/:id/activity", read, engagementHandler.Activity)
	engagements.POST("/:id/sessions", write, body, engagementHandler.AddSession)
	engagements.POST("/:id/sessions/:sessionId/complete", write, notesBody, engagementHandler.CompleteSession)
	engagements.POST("/:id/sessions/:sessionId/cancel", write, body, engagementHandler.CancelSession)
	engagements.POST("/:id/sessions/:sessionId/notes", write, notesBody, engagementHandler.RecordSessionNotes)
	engagements.POST("/:id/tasks", write, body, engagementHandler.AddTask)
	engagements.POST("/:id/tasks/:taskId/complete", write, body, engagementHandler.CompleteTask)
	engagements.POST("/:id/goals", write, body, engagementHandler.SetGoals)
	engagements.POST("/:id/withdraw", write, body, engagementHandler.Withdraw)
	engagements.POST("/:id/complete", write, body, engagementHandler.Complete)
	engagements.GET("/:id/eligibility", read, engagementHandler.Eligibility)
	engagements.GET("/:id/certificate", read, engagementHandler.Certificate)

	group.GET("/certificates/verify", read, certificateHandler.Verify)

	group.GET("/mentees/:id/preferences", read, preferencesHandler.Get)
	group.PUT("/mentees/:id/preferences", write, body, preferencesHandler.Save)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Mentorship API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("store", cfg.Store.Backend),
		zap.String("kv", cfg.KeyValue.Backend),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.AlloyEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (opt-in)
	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, profiling.Identity{
		Service:     cfg.Observability.ServiceName,
		Namespace:   cfg.Observability.ServiceNamespace,
		Version:     cfg.Observability.ServiceVersion,
		InstanceID:  cfg.Observability.ServiceInstanceID,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// NOTE: Database migrations run separately via the migrate command
	st, err := openStores(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to initialize stores", zap.Error(err))
	}
	defer st.close()

	// Initialize HTTP client for outbound webhooks
	httpClient := httpclient.NewStandardClient(httpclient.DefaultTimeout)

	certificateService, err := newCertificateService(cfg, httpClient)
	if err != nil {
		logger.Fatal("Failed to initialize certificate service", zap.Error(err))
	}

	notifier := services.MultiNotifier{
		services.NewLogNotifier(),
		services.NewWebhookNotifier(trigger.New("notification", cfg.Notifications.WebhookURL, httpClient)),
	}

	// Initialize services
	mentorshipService := services.NewMentorshipService(st.engagements, st.requests, st.kv, notifier, certificateService)
	preferencesService := services.NewPreferencesService(st.kv)

	// Initialize handlers
	requestHandler := handlers.NewRequestHandler(mentorshipService, notifier)
	engagementHandler := handlers.NewEngagementHandler(mentorshipService, notifier)
	certificateHandler := handlers.NewCertificateHandler(certificateService)
	preferencesHandler := handlers.NewPreferencesHandler(preferencesService)
	healthHandler := handlers.NewHealthHandler(st.checks...)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))

	// CORS configuration - only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters per endpoint type
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	writeRateLimiter := middleware.NewRateLimiter(20, 40)     // 20 req/sec, burst of 40
	defer generalRateLimiter.Stop()
	defer writeRateLimiter.Stop()

	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	registerAPIRoutes(v1, generalRateLimiter, writeRateLimiter,
		requestHandler, engagementHandler, certificateHandler, preferencesHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
