package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"docentes/internal/auth"
	"docentes/internal/cache"
	"docentes/internal/config"
	"docentes/internal/db"
	"docentes/internal/handler"
	"docentes/internal/logger"
	"docentes/internal/repository"
	"docentes/internal/router"
	"docentes/internal/service"
)

// @title Docentes API
// @version 1.0
// @description CRUD and reporting API for university teachers.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatal("database init", "driver", cfg.DBDriver, "error", err)
	}

	if cfg.AutoMigrate || cfg.ResetDB {
		if cfg.ResetDB {
			log.Warn("RESET_DB=true detected, dropping docentes table")
		}
		if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
			log.Fatal("migrate", "error", err)
		}
	}

	var cacheClient *cache.Client
	if cfg.CacheEnabled() {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, reads will go to the database", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		defer cacheClient.Close()
	}

	teacherRepo := repository.NewTeacherRepository(gormDB)
	teacherService := service.NewTeacherService(teacherRepo, cacheClient, cfg.CacheTTL)
	teacherHandler := handler.NewTeacherHandler(teacherService, cfg.DefaultPageSize)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, log, teacherHandler, jwtService)

	log.Info("swagger documentation available", "url", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("server starting", "addr", addr, "driver", cfg.DBDriver, "write_auth", cfg.WriteAuth)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	log.Info("server stopped")
}

// SwaggerHost may already include the scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
