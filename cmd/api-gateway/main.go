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

	_ "github.com/noah-isme/attendance-ledger-api/api/swagger"
	"github.com/noah-isme/attendance-ledger-api/internal/handler"
	"github.com/noah-isme/attendance-ledger-api/internal/middleware"
	"github.com/noah-isme/attendance-ledger-api/internal/service"
	"github.com/noah-isme/attendance-ledger-api/pkg/config"
	"github.com/noah-isme/attendance-ledger-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-ledger-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-ledger-api/pkg/middleware/requestid"
)

// @title Attendance Ledger API
// @version 1.0.0
// @description Daily attendance and monthly payment ledger for a school roster
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := openStores(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open stores", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer backends.Close()

	sequencer, closeSequencer := openSequencer(ctx, cfg, logr)
	defer closeSequencer()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	loc := cfg.Ledger.Location()

	attendanceSvc := service.NewAttendanceService(backends.attendance, sequencer, cfg.Store.Timeout, metricsSvc, logr)
	checkInSvc := service.NewCheckInService(backends.children, attendanceSvc, cfg.Ledger.ValidateCheckIns, cfg.Store.Timeout, metricsSvc, logr)
	paymentSvc := service.NewPaymentService(backends.payments, validate, cfg.Store.Timeout, metricsSvc, logr)
	rosterSvc := service.NewRosterService(backends.children, attendanceSvc, validate, service.RosterServiceConfig{
		Organization:    cfg.Ledger.Organization,
		ViewConcurrency: cfg.Ledger.ViewConcurrency,
		StoreTimeout:    cfg.Store.Timeout,
	}, metricsSvc, logr)
	exportSvc := service.NewExportService(rosterSvc, cfg.Ledger.Organization, logr, nil, nil)

	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, checkInSvc, rosterSvc, exportSvc, loc)
	childHandler := handler.NewChildHandler(rosterSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, backends.checks)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/courses", childHandler.Courses)
	api.GET("/children", childHandler.List)
	api.POST("/children", childHandler.Create)

	attendance := api.Group("/attendance")
	attendance.GET("", attendanceHandler.View)
	attendance.GET("/sheet", attendanceHandler.Sheet)
	attendance.POST("/check-in", attendanceHandler.CheckIn)
	attendance.GET("/:childId/:date", attendanceHandler.Get)
	attendance.PUT("/:childId/:date", attendanceHandler.Set)

	api.POST("/payments", paymentHandler.Create)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
