package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusflow/internal/handler"
	"focusflow/internal/middleware"
	"focusflow/internal/service"
)

func New(
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	settingsHandler *handler.SettingsHandler,
	blocklistHandler *handler.BlocklistHandler,
	sessionHandler *handler.SessionHandler,
	extensionHandler *handler.ExtensionHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(authService))

	authed.GET("/timer-settings", settingsHandler.GetTimerSettings)
	authed.PATCH("/timer-settings", settingsHandler.UpdateTimerSettings)
	authed.GET("/notification-settings", settingsHandler.GetNotificationSettings)
	authed.PATCH("/notification-settings", settingsHandler.UpdateNotificationSettings)

	authed.GET("/blocked-sites", blocklistHandler.List)
	authed.POST("/blocked-sites", blocklistHandler.Create)
	authed.PATCH("/blocked-sites/:id", blocklistHandler.SetEnabled)
	authed.DELETE("/blocked-sites/:id", blocklistHandler.Delete)

	authed.GET("/sessions", sessionHandler.List)
	authed.POST("/sessions", sessionHandler.Create)
	authed.GET("/sessions/:id", sessionHandler.Get)
	authed.PATCH("/sessions/:id", sessionHandler.Update)
	authed.GET("/session-stats", sessionHandler.Stats)

	extension := api.Group("/extension")
	extension.Use(middleware.Auth(authService))
	extension.POST("/token", extensionHandler.IssueToken)
	extension.GET("/blocked-sites", extensionHandler.BlockedSites)
	extension.GET("/timer-status", extensionHandler.TimerStatus)

	return engine
}
