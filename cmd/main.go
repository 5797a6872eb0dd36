package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/form-builder/config"
	"github.com/vnkhanh/form-builder/middleware"
	"github.com/vnkhanh/form-builder/routes"
)

func main() {
	envErr := config.LoadEnv()

	settings, err := config.LoadSettings()
	if err != nil {
		config.InitLogger("info", "release")
		config.Log.Fatal("invalid configuration", zap.Error(err))
	}
	config.App = settings

	config.InitLogger(settings.LogLevel, settings.GinMode)
	defer config.SyncLogger()
	if envErr != nil {
		config.Log.Info("no .env file found, using process environment", zap.Error(envErr))
	}

	gin.SetMode(settings.GinMode)

	// Connect DB + AutoMigrate
	config.ConnectDB()

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     settings.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		config.Log.Fatal("set trusted proxies", zap.Error(err))
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Form builder API is running")
	})
	stopRoutes := routes.SetupRoutes(r)

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		config.Log.Info("server listening", zap.String("port", settings.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	config.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		config.Log.Error("graceful shutdown failed", zap.Error(err))
	}
	stopRoutes()

	if sqlDB, err := config.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	config.Log.Info("server stopped")
}
