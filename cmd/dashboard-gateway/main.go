package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/attendance-client/api/swagger"
	"github.com/noah-isme/attendance-client/internal/api"
	"github.com/noah-isme/attendance-client/internal/handler"
	"github.com/noah-isme/attendance-client/internal/middleware"
	"github.com/noah-isme/attendance-client/internal/service"
	"github.com/noah-isme/attendance-client/pkg/apiclient"
	"github.com/noah-isme/attendance-client/pkg/config"
	"github.com/noah-isme/attendance-client/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-client/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-client/pkg/middleware/requestid"
	"github.com/noah-isme/attendance-client/pkg/session"
)

// @title Attendance Dashboard Gateway
// @version 0.1.0
// @description Composes attendance backend calls into admin dashboard screens
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	sizes := api.PageSizesFromConfig(cfg.PageSizes)

	baseOpts := apiclient.OptionsFromConfig(cfg.API)
	baseOpts.Logger = logr
	baseOpts.Observer = metrics
	baseOpts.Validator = validate
	// The caller owns its token; a backend 401 is reported, not acted on.
	baseOpts.ClearOnUnauthorized = false

	facadesFor := func(sess *session.Session) (*api.API, error) {
		opts := baseOpts
		opts.Session = sess
		client, err := apiclient.New(opts)
		if err != nil {
			return nil, err
		}
		return api.New(client, sizes), nil
	}

	authHandler := handler.NewAuthHandler(func(sess *session.Session) (handler.Authenticator, error) {
		facades, err := facadesFor(sess)
		if err != nil {
			return nil, err
		}
		return service.NewAuthService(facades.Auth, sess, validate, logr), nil
	})
	dashboardHandler := handler.NewDashboardHandler(func(sess *session.Session) (handler.DashboardReader, error) {
		facades, err := facadesFor(sess)
		if err != nil {
			return nil, err
		}
		return service.NewDashboardService(facades.Admin, logr, service.DashboardServiceConfig{PageSizes: sizes}), nil
	})
	exportHandler := handler.NewExportHandler(func(sess *session.Session) (handler.AttendanceExporter, error) {
		facades, err := facadesFor(sess)
		if err != nil {
			return nil, err
		}
		return service.NewExportService(facades.Admin, metrics, logr, service.ExportConfig{}), nil
	})
	metricsHandler := handler.NewMetricsHandler(metrics, cfg.API.BaseURL())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.Gateway.AllowedOrigins, cfg.API.TunnelHeader))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := r.Group("/api")
	apiGroup.POST("/auth/telegram", authHandler.Telegram)

	secured := apiGroup.Group("", middleware.Bearer(session.WithLogger(logr), session.WithFailureHook(metrics.RecordSessionFailure)))
	dashboard := secured.Group("/dashboard")
	dashboard.GET("/overview", dashboardHandler.Overview)
	dashboard.GET("/students", dashboardHandler.Students)
	dashboard.GET("/students/:id", dashboardHandler.Student)
	dashboard.GET("/teachers/:id", dashboardHandler.Teacher)
	dashboard.GET("/groups", dashboardHandler.Groups)
	dashboard.GET("/groups/:id", dashboardHandler.Group)
	secured.GET("/exports/students/:id/attendance", exportHandler.StudentAttendance)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("gateway starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("backend", cfg.API.BaseURL()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("gateway failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("gateway stopped")
}
