package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/rewards-admin/internal/config"
	"github.com/ignatzorin/rewards-admin/internal/dashboard"
	"github.com/ignatzorin/rewards-admin/internal/db"
	"github.com/ignatzorin/rewards-admin/internal/goroutine"
	httpHandlers "github.com/ignatzorin/rewards-admin/internal/http/handlers"
	"github.com/ignatzorin/rewards-admin/internal/http/middleware"
	httpRouter "github.com/ignatzorin/rewards-admin/internal/http/router"
	"github.com/ignatzorin/rewards-admin/internal/live"
	"github.com/ignatzorin/rewards-admin/internal/logger"
	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/repository"
	"github.com/ignatzorin/rewards-admin/internal/service"
	"github.com/ignatzorin/rewards-admin/internal/validation"
	"github.com/ignatzorin/rewards-admin/internal/view"
	"github.com/ignatzorin/rewards-admin/internal/ws"
	"github.com/ignatzorin/rewards-admin/migrations"
)

const (
	flashCleanupInterval   = time.Minute
	sessionCleanupInterval = 30 * time.Minute
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.Env)
	mainLog := logger.Entry("main")

	if err := validation.RegisterGinValidators(); err != nil {
		mainLog.WithError(err).Fatal("не удалось зарегистрировать валидаторы")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLog.WithError(err).Fatal("ошибка подключения к базе")
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, migrationsFS(cfg.MigrationsPath)); err != nil {
		mainLog.WithError(err).Fatal("ошибка миграций")
	}

	redisClient, err := db.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		mainLog.WithError(err).Fatal("ошибка подключения к Redis")
	}
	defer db.CloseRedis(redisClient)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn, cfg.StoreCallTimeout)
	withdrawalRepo := repository.NewWithdrawalRepository(dbConn, cfg.StoreCallTimeout)
	earningRepo := repository.NewEarningRepository(dbConn, cfg.StoreCallTimeout)

	// Живые изменения: локальные публикации и LISTEN/NOTIFY из хранилища.
	feed := live.NewFeed()
	listener := db.NewChangeListener(cfg.DatabaseURL, feed)
	goroutine.GoWithContext(ctx, "change-listener", func(ctx context.Context) {
		if err := listener.Run(ctx); err != nil {
			mainLog.WithError(err).Error("слушатель изменений остановлен, панели обновляются только по действиям консоли")
		}
	})

	// Вебсокеты и уведомления.
	hub := ws.NewHub(ctx)
	goroutine.Go("ws-hub", hub.Run)

	flash := service.NewFlashStore(ctx, flashCleanupInterval)
	notifier := notify.NewNotifier(hub, flash)

	// Сервисы.
	tokens := service.NewTokenManager(cfg.JWTSecret)
	identity := service.NewIdentityService(userRepo, tokens, cfg.SessionTTL)
	gate := service.NewAuthorizationGate(userRepo)
	loginService := service.NewLoginService(identity, userRepo)
	actions := service.NewActionService(userRepo, withdrawalRepo, feed)

	controller := dashboard.NewController(
		dashboard.Stores{Users: userRepo, Withdrawals: withdrawalRepo, Earnings: earningRepo},
		feed,
		gate,
		identity,
		view.NewPanelRenderer(),
		notifier,
		hub,
		dashboard.Options{Location: cfg.Location, IdleTimeout: cfg.ViewIdleTimeout},
	)
	defer controller.Shutdown()

	unsubscribe := identity.OnSessionChange(controller.HandleSessionEvent)
	defer unsubscribe()

	goroutine.GoWithContext(ctx, "session-cleanup", func(ctx context.Context) {
		cleanupSessions(ctx, userRepo)
	})

	// Middleware.
	cookies := middleware.Cookies{
		Session:    cfg.SessionCookie,
		Client:     cfg.ClientCookie,
		Secure:     cfg.SecureCookies,
		SessionTTL: cfg.SessionTTL,
	}

	limitStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		mainLog.WithError(err).Fatal("не удалось создать хранилище лимитов")
	}

	mw := httpRouter.Middlewares{
		ClientKey:      middleware.ClientKeyMiddleware(cookies),
		Session:        middleware.SessionMiddleware(identity, cookies),
		RequireAdmin:   middleware.RequireAdmin(gate, identity, notifier, cookies),
		LoginRateLimit: middleware.RateLimitMiddleware(limitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod),
	}

	// HTTP хэндлеры.
	pageHandler := httpHandlers.NewPageHandler(controller, flash, cookies)
	authHandler := httpHandlers.NewAuthHandler(loginService, identity, cookies)
	dashboardHandler := httpHandlers.NewDashboardHandler(controller, cookies)
	userHandler := httpHandlers.NewUserHandler(actions)
	withdrawalHandler := httpHandlers.NewWithdrawalHandler(actions)
	wsHandler := httpHandlers.NewWSHandler(hub, controller, notifier)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, redisClient)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, mw, pageHandler, authHandler, dashboardHandler, userHandler, withdrawalHandler, wsHandler, healthHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.GoWithContext(ctx, "http-shutdown", func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLog.WithError(err).Error("ошибка остановки http сервера")
		}
	})

	mainLog.WithField("port", cfg.HTTPPort).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mainLog.WithError(err).Error("сервер завершился с ошибкой")
	}
}

// migrationsFS берёт миграции с диска, если каталог есть, иначе встроенные в бинарник.
func migrationsFS(path string) fs.FS {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return os.DirFS(path)
	}
	return migrations.FS
}

// cleanupSessions периодически удаляет истёкшие сессии.
func cleanupSessions(ctx context.Context, users *repository.UserRepository) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	cleanupLog := logger.Entry("session_cleanup")
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := users.DeleteExpiredSessions(ctx, now)
			if err != nil {
				cleanupLog.WithError(err).Warn("не удалось удалить истёкшие сессии")
				continue
			}
			if removed > 0 {
				cleanupLog.WithField("removed", removed).Debug("истёкшие сессии удалены")
			}
		}
	}
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Entry("main").WithError(err).Error("ошибка закрытия базы")
	}
}
