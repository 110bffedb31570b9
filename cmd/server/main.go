package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"workorder-service/internal/config"
	"workorder-service/internal/handler"
	"workorder-service/internal/httpserver"
	"workorder-service/internal/repository"
	"workorder-service/internal/service/auth"
	"workorder-service/internal/service/notification"
	"workorder-service/internal/service/project"
	"workorder-service/internal/service/workorder"
	"workorder-service/pkg/db"
	"workorder-service/pkg/logger"
	"workorder-service/pkg/mq"
	"workorder-service/pkg/outbox"
)

var errMQDisconnected = errors.New("mq connection lost")

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting workorder-service API...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	workOrderRepo := repository.NewWorkOrderRepository(dbConn, log)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)
	deliveryRepo := repository.NewDeliveryRepository(dbConn, log)
	escrowRepo := repository.NewEscrowRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	applicationRepo := repository.NewApplicationRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn, log)

	workOrderService := workorder.NewService(
		dbConn, workOrderRepo, milestoneRepo, deliveryRepo, escrowRepo,
		projectRepo, applicationRepo, log,
	)
	if cfg.Server.CompletionPolicy == "manual" {
		workOrderService.WithCompletionPolicy(workorder.ManualCompletionPolicy)
		log.Info("Using manual completion policy")
	}
	projectService := project.NewService(
		dbConn, projectRepo, applicationRepo, workOrderRepo, escrowRepo, log,
	)
	authService := auth.NewService(userRepo, cfg.JWT.Secret, log)
	notificationService := notification.NewService(notificationRepo, log)

	// MQ publisher + outbox dispatcher
	log.Info("Initializing MQ publisher...")
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()

	dispatcher := outbox.NewDispatcher(outbox.NewRepository(dbConn), publisher, log).
		WithInterval(2 * time.Second).
		WithBatchSize(50).
		WithMaxRetries(5)
	go dispatcher.Start(dispatcherCtx)
	log.Info("Outbox dispatcher started")

	// HTTP server
	handlers := httpserver.Handlers{
		Auth:          handler.NewAuthHandler(authService, log),
		WorkOrders:    handler.NewWorkOrderHandler(workOrderService, log),
		Projects:      handler.NewProjectHandler(projectService, log),
		Notifications: handler.NewNotificationHandler(notificationService, log),
		Admin:         handler.NewAdminHandler(outbox.NewRepository(dbConn), log),
	}
	ready := func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := dbConn.Ping(pingCtx); err != nil {
			return err
		}
		if !publisher.IsConnected() {
			return errMQDisconnected
		}
		return nil
	}
	router := httpserver.NewRouter(handlers, cfg.JWT.Secret, ready, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("workorder-service API is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down workorder-service API gracefully...")

	log.Info("Stopping outbox dispatcher...")
	dispatcherCancel()

	log.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("Closing database connection...")
	dbConn.Close()

	log.Info("workorder-service API shutdown complete")
}
