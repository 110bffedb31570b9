package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"workorder-service/internal/config"
	"workorder-service/internal/mqhandler"
	"workorder-service/internal/repository"
	"workorder-service/internal/service/notification"
	"workorder-service/pkg/db"
	"workorder-service/pkg/logger"
	"workorder-service/pkg/mq"
	"workorder-service/pkg/redis"
	"workorder-service/pkg/util"
)

const dedupTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting workorder-service worker...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	notificationService := notification.NewService(notificationRepo, log)

	// Redis dedup
	rdb := redis.NewClient(cfg.Redis)
	defer rdb.Close()
	deduper := util.NewDeduper(rdb, dedupTTL, log)

	notificationHandler := mqhandler.NewNotificationHandler(notificationService, deduper, log)

	// One queue per event family, all feeding the same handler.
	bindings := []struct {
		queue      string
		routingKey string
	}{
		{"notifications.workorder.q", "workorder.#"},
		{"notifications.delivery.q", "delivery.*"},
		{"notifications.escrow.q", "escrow.*"},
	}

	consumers := make([]*mq.Consumer, 0, len(bindings))
	for _, b := range bindings {
		log.Info("Initializing MQ consumer...",
			zap.String("queue", b.queue),
			zap.String("routing_key", b.routingKey),
		)
		consumer, err := mq.NewConsumer(cfg.MQ.URL, b.queue, b.routingKey, log)
		if err != nil {
			log.Fatal("Failed to init consumer", zap.Error(err))
		}
		defer consumer.Close()

		consumer.SetHandler(notificationHandler.Handle)
		consumers = append(consumers, consumer)

		go func(c *mq.Consumer, routingKey string) {
			log.Info("Starting consumer...", zap.String("routing_key", routingKey))
			if err := c.StartConsuming(); err != nil {
				log.Fatal("Consumer failed", zap.Error(err))
			}
		}(consumer, b.routingKey)
	}

	log.Info("workorder-service worker is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker gracefully...")

	log.Info("Stopping MQ consumers...")
	for _, c := range consumers {
		c.Stop()
	}

	log.Info("Closing database connection...")
	dbConn.Close()

	log.Info("worker shutdown complete")
}
