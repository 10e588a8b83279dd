package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oms-api/config"
	"oms-api/internal/api"
	"oms-api/internal/auth"
	"oms-api/internal/broker"
	"oms-api/internal/redisclient"
	"oms-api/internal/seed"
	"oms-api/internal/service"
	"oms-api/internal/store"
	"oms-api/internal/util"
	"oms-api/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting order management service")

	tp, err := util.InitTracer("oms-api", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL, cfg.Orders.IDSeed)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret)

	if cfg.Orders.SeedOnStart {
		log.Println("Resetting database to demo fixtures")
		if err := seed.Apply(context.Background(), db.GetDB(), issuer, cfg.Orders.IDSeed); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
		log.Println("All data inserted successfully")
	}

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	clock := service.SystemClock{}
	decider := service.NewCoinFlip()
	notifier := service.NewEmailNotifier()
	cards := service.NewCardGenerator(clock, decider)

	ledger := service.NewInventoryLedger(db, redisClient)
	if err := ledger.SyncToCache(context.Background()); err != nil {
		log.Printf("Failed to sync stock cache: %v", err)
	}

	checkoutService := service.NewCheckoutService(
		db, db, db, ledger, db, clock, decider, notifier, eventPublisher)
	orderService := service.NewOrderService(
		db, db, ledger, clock, notifier, eventPublisher)
	cartService := service.NewCartService(db, db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	orderConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	auditWorker := worker.NewAuditWorker(orderConsumer)
	go func() {
		if err := auditWorker.Start(workerCtx); err != nil {
			log.Printf("Audit worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(db, db, cartService, checkoutService, orderService, cards, issuer)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	auditWorker.Stop()

	log.Println("Server exited")
}
