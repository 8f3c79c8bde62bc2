package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/daru-pasal/liquor_shop/internal/config"
	"github.com/daru-pasal/liquor_shop/internal/es"
	"github.com/daru-pasal/liquor_shop/internal/handlers"
	"github.com/daru-pasal/liquor_shop/internal/logging"
	"github.com/daru-pasal/liquor_shop/internal/middleware/auth"
	"github.com/daru-pasal/liquor_shop/internal/middleware/csrf"
	"github.com/daru-pasal/liquor_shop/internal/middleware/loggingmw"
	"github.com/daru-pasal/liquor_shop/internal/mykafka"
	"github.com/daru-pasal/liquor_shop/internal/repo"
	"github.com/daru-pasal/liquor_shop/internal/service"
	httpserver "github.com/daru-pasal/liquor_shop/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		logger.Warn("kafka disabled", "error", err)
		prod = &mykafka.Producer{}
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		logger.Warn("elasticsearch disabled", "error", err)
		esClient = nil
	}

	jwtSecret := []byte(cfg.JWTSecret)
	refreshSecret := []byte(cfg.RefreshSecret)

	gormRepo := &repo.GormRepo{DB: db}
	tokens := &auth.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(csrf.Middleware(csrf.Config{
		SkipPaths: []string{"/api/v1/auth/register", "/api/v1/auth/login"},
	}))

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod,
		},
		ProductHandler: &handlers.ProductHandler{
			Svc: &service.ProductService{Repo: gormRepo}, Producer: prod,
			ES: esClient, ESIndex: cfg.ESIndex,
		},
		OrderHandler: &handlers.OrderHandler{
			Svc: &service.OrderService{Repo: gormRepo}, Producer: prod,
		},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: cfg.ESIndex},
		Tokens:        tokens,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
