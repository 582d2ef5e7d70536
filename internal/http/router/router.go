package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/rewards-admin/internal/config"
	"github.com/ignatzorin/rewards-admin/internal/http/handlers"
	"github.com/ignatzorin/rewards-admin/internal/http/middleware"
	"github.com/ignatzorin/rewards-admin/internal/view"
)

// Middlewares собранные в main middleware с зависимостями.
type Middlewares struct {
	ClientKey      gin.HandlerFunc
	Session        gin.HandlerFunc
	RequireAdmin   gin.HandlerFunc
	LoginRateLimit gin.HandlerFunc
}

func SetupRouter(
	cfg *config.Config,
	mw Middlewares,
	pageHandler *handlers.PageHandler,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	userHandler *handlers.UserHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/static", http.FS(view.Static()))

	console := r.Group("/")
	console.Use(mw.ClientKey, mw.Session)
	{
		console.GET("/", pageHandler.Landing)
		console.GET("/login", pageHandler.Login)
		console.GET("/dashboard", pageHandler.Dashboard)
	}

	api := console.Group("/api")
	api.Use(middleware.NoStore())

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", mw.LoginRateLimit, authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Обновление и WebSocket проверяют доступ через контроллер консоли.
	api.POST("/dashboard/refresh", dashboardHandler.Refresh)
	api.GET("/ws", wsHandler.Handle)

	admin := api.Group("")
	admin.Use(mw.RequireAdmin)
	{
		admin.GET("/dashboard/snapshot", dashboardHandler.Snapshot)
		admin.DELETE("/users/:id", middleware.UUIDValidator("id"), userHandler.DeleteUser)
		admin.POST("/withdrawals/:id/status", middleware.UUIDValidator("id"), withdrawalHandler.SetStatus)
	}

	return r
}
