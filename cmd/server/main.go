package main

import (
	"go.uber.org/zap"

	"focusflow/internal/config"
	"focusflow/internal/db"
	"focusflow/internal/handler"
	"focusflow/internal/repository"
	"focusflow/internal/router"
	"focusflow/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	blockedSiteRepo := repository.NewBlockedSiteRepository(database)
	sessionRepo := repository.NewSessionRepository(database)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, cfg.ExtensionTokenTTL)
	settingsService := service.NewSettingsService(settingsRepo)
	blocklistService := service.NewBlocklistService(blockedSiteRepo)
	sessionService := service.NewSessionService(sessionRepo, settingsService, cfg.StatsCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	blocklistHandler := handler.NewBlocklistHandler(blocklistService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	extensionHandler := handler.NewExtensionHandler(authService, blocklistService, sessionService)

	engine := router.New(
		authService,
		authHandler,
		settingsHandler,
		blocklistHandler,
		sessionHandler,
		extensionHandler,
		cfg.CORSOrigins,
	)

	logger.Info("server listening", zap.String("port", cfg.Port))
	if err := engine.Run(":" + cfg.Port); err != nil {
		logger.Fatal("run server", zap.Error(err))
	}
}
