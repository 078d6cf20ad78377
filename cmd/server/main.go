package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vininfo.backend/internal/config"
	"vininfo.backend/internal/infrastructure/datasources/postgres"
	"vininfo.backend/internal/infrastructure/email"
	"vininfo.backend/internal/infrastructure/jobs"
	"vininfo.backend/internal/infrastructure/metrics"
	"vininfo.backend/internal/infrastructure/registry"
	"vininfo.backend/internal/infrastructure/repositories"
	"vininfo.backend/internal/interfaces/http/handlers"
	"vininfo.backend/internal/interfaces/http/middleware"
	"vininfo.backend/internal/usecases"
	"vininfo.backend/pkg/jwt"
	"vininfo.backend/pkg/logger"
	"vininfo.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		sqlDB, err := postgres.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewGorm(sqlDB)
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return err
	}

	initLog(cfg.Server.Env)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis backs the dispatch lock, login throttling and idempotency.
	// Without it those features degrade to pass-through.
	redisUp := true
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		redisUp = false
		logger.Warn(ctx, "Redis unavailable, running without locks and throttling", zap.Error(err))
	} else {
		logger.Info(ctx, "Redis initialized")
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL")

	schema := postgres.NewSchema(db)
	if err := schema.Ensure(ctx); err != nil {
		// Retried on the first API request.
		logger.Warn(ctx, "Schema ensure failed at boot", zap.Error(err))
	}

	tokens, err := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.SessionExpiry, cfg.JWT.UnsubscribeExpiry)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	renderer, err := email.NewRenderer(cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to load email templates: %w", err)
	}
	mailer := email.NewResendClient(cfg.Email)
	if !mailer.Configured() {
		logger.Warn(ctx, "RESEND_API_KEY not set, emails will be skipped")
	}
	m := metrics.New()

	var (
		locker        usecases.RunLocker
		limiter       usecases.AttemptLimiter
		verifyLimiter usecases.AttemptLimiter
	)
	if redisUp {
		locker = redis.NewRunLock(usecases.DispatchLockKey, cfg.Scheduler.LockTTL)
		limiter = redis.NewAttemptLimiter(usecases.LoginFailureKeyPrefix, usecases.LoginMaxFailures, usecases.LoginFailureWindow)
		verifyLimiter = redis.NewAttemptLimiter(usecases.VerifyFailureKeyPrefix, usecases.VerifyMaxFailures, usecases.VerifyFailureWindow)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	emailVerifRepo := repositories.NewEmailVerificationRepository(db)
	vehicleRepo := repositories.NewVehicleRepository(db)
	reminderRepo := repositories.NewReminderRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, emailVerifRepo, tokens, mailer, renderer, limiter, m, cfg.Server.IsDevelopment()).
		WithVerifyLimiter(verifyLimiter)
	vehicleUsecase := usecases.NewVehicleUsecase(vehicleRepo, uow)
	reminderUsecase := usecases.NewReminderUsecase(reminderRepo, vehicleRepo, uow)
	preferenceUsecase := usecases.NewPreferenceUsecase(userRepo)
	unsubscribeUsecase := usecases.NewUnsubscribeUsecase(userRepo, tokens)
	dispatcher := usecases.NewReminderDispatcher(reminderRepo, tokens, mailer, renderer, locker, m, cfg.Scheduler.SendDelay)
	marketingUsecase := usecases.NewMarketingUsecase(userRepo, tokens, mailer, renderer, m, cfg.Scheduler.SendDelay)

	// Handlers
	deps := routeDeps{
		authHandler:        handlers.NewAuthHandler(authUsecase, cfg.Server.IsProduction(), tokens.SessionExpiry()),
		vehicleHandler:     handlers.NewVehicleHandler(vehicleUsecase),
		reminderHandler:    handlers.NewReminderHandler(reminderUsecase),
		preferenceHandler:  handlers.NewPreferenceHandler(preferenceUsecase),
		dispatchHandler:    handlers.NewDispatchHandler(dispatcher, marketingUsecase),
		unsubscribeHandler: handlers.NewUnsubscribeHandler(unsubscribeUsecase, renderer),
		registryHandler:    handlers.NewRegistryHandler(registry.NewClient(cfg.Registry)),
		healthHandler:      handlers.NewHealthHandler(sqlDB.PingContext),
		sessionAuth:        middleware.SessionAuthMiddleware(tokens),
		cronAuth:           middleware.CronAuthMiddleware(cfg.Security.CronSecret),
		adminAuth:          middleware.AdminAuthMiddleware(cfg.AdminSecret()),
		schema:             middleware.SchemaMiddleware(schema.Ensure),
		corsOrigins:        cfg.CORS.AllowedOrigins,
		metrics:            m,
	}

	job := jobs.NewReminderDispatchJob(dispatcher, cfg.Scheduler.ReminderCron)
	go job.Start(ctx)

	r := newRouter(deps)

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "Shutting down server")
		job.Stop()
		cancel()
	}()

	logger.Info(ctx, "VIN Info backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("base_url", cfg.Server.BaseURL),
		zap.Bool("reminder_job", cfg.Scheduler.ReminderCron != ""),
	)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
