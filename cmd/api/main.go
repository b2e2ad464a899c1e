package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	cacheadp "bonafide-backend/internal/adapter/cache"
	httpadp "bonafide-backend/internal/adapter/http"
	"bonafide-backend/internal/adapter/mail"
	"bonafide-backend/internal/adapter/middleware"
	"bonafide-backend/internal/adapter/realtime"
	"bonafide-backend/internal/adapter/repository/gormrepo"
	"bonafide-backend/internal/config"
	"bonafide-backend/internal/infrastructure/cache"
	"bonafide-backend/internal/infrastructure/db"
	"bonafide-backend/internal/infrastructure/logger"
	"bonafide-backend/internal/infrastructure/scheduler"
	ucAnalytics "bonafide-backend/internal/usecase/analytics"
	ucCertificate "bonafide-backend/internal/usecase/certificate"
	ucNotification "bonafide-backend/internal/usecase/notification"
	ucProfile "bonafide-backend/internal/usecase/profile"
	ucSelection "bonafide-backend/internal/usecase/selection"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gormLevel := gormlogger.Info
	if cfg.Production() {
		gormLevel = gormlogger.Warn
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), gormLevel)
	if err != nil {
		log.Fatal("database unavailable", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("database handle", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("redis unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	certRepo := gormrepo.NewCertificateRepository(gdb)
	profileRepo := gormrepo.NewProfileRepository(gdb)
	notificationRepo := gormrepo.NewNotificationRepository(gdb)
	tx := gormrepo.NewGormUoW(gdb)

	var mailer ucNotification.Mailer = mail.NewConsole(log)
	if cfg.SendgridAPIKey != "" {
		mailer = mail.NewSendGrid(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFrom, log)
	} else {
		log.Warn("SENDGRID_API_KEY not set, emails are logged only")
	}

	queryCache := cacheadp.NewQueryCache(rdb, cfg.QueryCacheTTL())
	hub := realtime.NewHub()
	bus := realtime.NewBus(rdb, hub, queryCache, log)
	bridge := ucNotification.NewBridge(profileRepo, mailer, bus, cfg.FrontendBaseURL, log)

	certUC := ucCertificate.NewUsecase(certRepo, tx, bridge, log).WithCache(queryCache)
	selUC := ucSelection.NewUsecase(cacheadp.NewSelectionStore(rdb), certUC)
	certUC.WithSelections(selUC)
	profileUC := ucProfile.NewUsecase(profileRepo, tx, log)
	notificationUC := ucNotification.NewUsecase(notificationRepo, log)
	analyticsUC := ucAnalytics.NewUsecase(certRepo, profileRepo)

	sched := scheduler.New(log)
	if err := sched.Add(scheduler.Job{
		Name:    "notification-retention",
		Spec:    cfg.RetentionCron,
		Timeout: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			n, err := notificationUC.Sweep(ctx, cfg.NotificationRetentionDays)
			if err == nil {
				log.Info("read notifications purged", zap.Int64("deleted", n))
			}
			return err
		},
	}); err != nil {
		log.Fatal("invalid RETENTION_CRON", zap.String("spec", cfg.RetentionCron), zap.Error(err))
	}
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := bus.Run(ctx); err != nil {
			log.Error("change bus stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestLogger(log))

	httpadp.Register(e, httpadp.Routes{
		Health: httpadp.NewHandler(
			httpadp.HealthCheck{Name: "database", Check: sqlDB.PingContext},
			httpadp.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return cache.Ping(ctx, rdb) }},
		),
		Certificates:  httpadp.NewCertificateHandler(certUC, log),
		Profiles:      httpadp.NewProfileHandler(profileUC, log),
		Notifications: httpadp.NewNotificationHandler(notificationUC, log),
		Analytics:     httpadp.NewAnalyticsHandler(analyticsUC, log),
		Selections:    httpadp.NewSelectionHandler(selUC, log),
		Stream:        realtime.NewStreamHandler(hub, originPatterns(cfg.FrontendBaseURL)).Stream,
		Auth:          middleware.JWTAuth([]byte(cfg.JWTSecret), profileUC, log),
		Idempotency:   middleware.Idempotency(rdb, cfg.IdempotencyTTL(), log),
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
	if err := rdb.Close(); err != nil {
		log.Error("redis close", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("db close", zap.Error(err))
	}
}

// originPatterns allows websocket upgrades from the frontend host.
func originPatterns(frontend string) []string {
	u, err := url.Parse(frontend)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
