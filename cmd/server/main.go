package main

import (
	"taskboard-api/internal/config"
	"taskboard-api/internal/database"
	"taskboard-api/internal/handlers"
	"taskboard-api/internal/realtime"
	"taskboard-api/internal/routes"
	"taskboard-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	defer func() {
		_ = logger.Sync()
	}()

	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	if cfg.SeedSampleData {
		if err := database.SeedIfEmpty(db); err != nil {
			logger.Fatal("failed to seed sample data", zap.Error(err))
		}
	}

	hub := realtime.NewHub()
	taskService := service.NewTaskService(db, hub)
	userService := service.NewUserService(db)

	router := routes.Setup(logger, routes.Handlers{
		Tasks:     handlers.NewTaskHandler(taskService),
		Users:     handlers.NewUserHandler(userService),
		Dashboard: handlers.NewDashboardHandler(taskService, cfg.DashboardCacheTTL),
		Feed:      handlers.NewFeedHandler(hub),
	})

	addr := ":" + cfg.AppPort
	logger.Info("starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("could not start server", zap.Error(err))
	}
}
